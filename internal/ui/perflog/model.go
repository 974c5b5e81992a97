package perflog

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/theme"
	"github.com/picklepulse/pulse/internal/tracker"
)

type loadedMsg struct {
	entries []model.PerformanceEntry
	err     error
}

type opDoneMsg struct {
	err error
}

type mode int

const (
	modeBrowse mode = iota
	modeForm
)

type formBindings struct {
	date        string
	location    string
	performance string
	notes       string
}

// Model is the Bubble Tea model for the recent performance log panel.
type Model struct {
	tracker *tracker.Tracker
	entries []model.PerformanceEntry
	mode    mode
	form    *huh.Form
	fb      *formBindings
	status  string
	width   int
	height  int
}

// New creates a performance log model.
func New(t *tracker.Tracker, width, height int) Model {
	return Model{
		tracker: t,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init loads the log.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Reload refetches the log from the active store.
func (m Model) Reload() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		entries, err := t.RecentPerformance(context.Background())
		return loadedMsg{entries: entries, err: err}
	}
}

// Update handles messages for the performance log.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == modeForm {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			m.startForm()
			return m, m.form.Init()
		case "r":
			return m, m.load()
		}

	case loadedMsg:
		if msg.err != nil {
			m.status = "could not load performance log: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.entries = msg.entries
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = "Entry logged"
		return m, m.load()
	}

	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = modeBrowse
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeBrowse
		return m, nil
	}

	return m, cmd
}

func (m *Model) startForm() {
	m.mode = modeForm
	m.fb.date = time.Now().Format(model.DateLayout)
	m.fb.location = ""
	m.fb.performance = ""
	m.fb.notes = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateDate),
			huh.NewInput().
				Title("Location").
				Placeholder("Where did you play?").
				Value(&m.fb.location),
			huh.NewInput().
				Title("Performance").
				Placeholder("e.g., Won 2 of 3").
				Value(&m.fb.performance),
			huh.NewText().
				Title("Notes").
				Placeholder("Optional details...").
				Value(&m.fb.notes),
		),
	).WithWidth(m.formWidth())
}

func (m Model) submit() tea.Cmd {
	t := m.tracker
	fb := *m.fb
	return func() tea.Msg {
		date, err := time.Parse(model.DateLayout, strings.TrimSpace(fb.date))
		if err != nil {
			return opDoneMsg{err: fmt.Errorf("invalid date %q", fb.date)}
		}
		err = t.LogPerformance(context.Background(), model.PerformanceEntry{
			Date:        date,
			Location:    fb.location,
			Performance: fb.performance,
			Notes:       fb.notes,
		})
		return opDoneMsg{err: err}
	}
}

// View renders the log as a simple table, newest first.
func (m Model) View() string {
	if m.mode == modeForm {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.PanelTitleStyle.Render("Log Performance") + "\n\n" + m.form.View())
	}

	var lines []string
	lines = append(lines, theme.HelpStyle.Render(
		fmt.Sprintf("%-12s %-18s %-16s %s", "Date", "Location", "Performance", "Notes")))

	if len(m.entries) == 0 {
		lines = append(lines, theme.HelpStyle.Render("No performance entries yet"))
	}
	for _, e := range m.entries {
		lines = append(lines, fmt.Sprintf("%-12s %-18s %-16s %s",
			e.Date.Format(model.DateLayout),
			truncate(e.Location, 18),
			truncate(e.Performance, 16),
			truncate(e.Notes, 40),
		))
	}

	help := theme.HelpStyle.Render("a add entry · r refresh")
	status := ""
	if m.status != "" {
		status = "\n" + theme.HelpStyle.Render(m.status)
	}

	return theme.PanelStyle.Width(m.width - 2).Render(
		theme.PanelTitleStyle.Render("Performance Log") + "\n\n" +
			strings.Join(lines, "\n") + "\n\n" + help + status)
}

// Editing reports whether the add-entry form has input focus.
func (m Model) Editing() bool {
	return m.mode == modeForm
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateDate(s string) error {
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// truncate shortens s to at most max display cells, never splitting a
// multibyte rune.
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "…")
}
