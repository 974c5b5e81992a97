package stats

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/theme"
	"github.com/picklepulse/pulse/internal/tracker"
)

// windowLabels maps each averaging window to its menu label.
var windowLabels = map[int]string{
	7:  "Weekly",
	14: "Bi-weekly",
	30: "Monthly",
}

// loadedMsg carries freshly computed averages for a window.
type loadedMsg struct {
	window   int
	averages tracker.Averages
	err      error
}

// Model is the Bubble Tea model for the health overview panel. The
// all-zero sentinel is distinguished from "still loading" by the loading
// flag, never by value.
type Model struct {
	tracker *tracker.Tracker
	window  int
	avgs    tracker.Averages
	loading bool
	spin    spinner.Model
	err     error
	width   int
	height  int
}

// New creates a stats panel defaulting to the given averaging window.
func New(t *tracker.Tracker, windowDays, width, height int) Model {
	if !tracker.ValidWindow(windowDays) {
		windowDays = 7
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		tracker: t,
		window:  windowDays,
		spin:    sp,
		width:   width,
		height:  height,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload refetches and recomputes the averages for the current window in
// full; there is no incremental update. The app triggers it after every
// completed check-in submission.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	t := m.tracker
	window := m.window
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg {
			avgs, err := t.Averages(context.Background(), window)
			return loadedMsg{window: window, averages: avgs, err: err}
		},
	)
}

// Update handles messages for the stats panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "w" {
			m.window = nextWindow(m.window)
			return m, m.Reload()
		}

	case loadedMsg:
		// A stale result from a superseded window selection is dropped.
		if msg.window != m.window {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.avgs = msg.averages
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the four metric averages.
func (m Model) View() string {
	title := theme.PanelTitleStyle.Render("Health Overview") +
		theme.HelpStyle.Render(fmt.Sprintf("  %s (w to change)", windowLabels[m.window]))

	var body string
	switch {
	case m.loading:
		body = m.spin.View() + " loading..."
	case m.err != nil:
		body = theme.ErrorStyle.Render("stats unavailable")
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			metricCell("⭐ Performance", m.avgs.Performance, model.RatingMax, false),
			metricCell("😴 Sleep", m.avgs.Sleep, model.SleepHoursMax, false),
			metricCell("🍽️ Energy", m.avgs.Hunger, model.RatingMax, false),
			metricCell("💪 Soreness", m.avgs.Soreness, model.RatingMax, true),
		)
	}

	footer := theme.HelpStyle.Render(
		fmt.Sprintf("Showing average from the last %d days", m.window))

	return theme.PanelStyle.Width(m.width - 2).Render(
		title + "\n\n" + body + "\n\n" + footer)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Window returns the currently selected averaging window.
func (m Model) Window() int {
	return m.window
}

func metricCell(label string, value, max float64, lowerIsBetter bool) string {
	style := theme.MetricStyle(value, max)
	if lowerIsBetter {
		style = theme.SorenessStyle(value)
	}

	labelLine := theme.HelpStyle.Render(label)
	valueLine := style.Bold(true).Render(fmt.Sprintf("%.1f", value))

	return lipgloss.NewStyle().
		Padding(0, 2).
		Render(labelLine + "\n" + valueLine)
}

// nextWindow cycles 7 → 14 → 30 → 7.
func nextWindow(current int) int {
	for i, w := range tracker.Windows {
		if w == current {
			return tracker.Windows[(i+1)%len(tracker.Windows)]
		}
	}
	return tracker.Windows[0]
}
