package checkin

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/theme"
	"github.com/picklepulse/pulse/internal/tracker"
)

// SubmittedMsg is dispatched when the user completes the check-in form.
type SubmittedMsg struct {
	Metrics tracker.CheckInMetrics
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	sleep       float64
	hunger      int
	soreness    int
	performance int
}

// Model is the Bubble Tea model for the daily check-in form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new check-in form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form with the default slider positions.
func (m *Model) Start() tea.Cmd {
	m.fb.sleep = 7
	m.fb.hunger = 3
	m.fb.soreness = 3
	m.fb.performance = 3
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the check-in form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		metrics := tracker.CheckInMetrics{
			SleepHours:  m.fb.sleep,
			Hunger:      m.fb.hunger,
			Soreness:    m.fb.soreness,
			Performance: m.fb.performance,
		}
		return m, func() tea.Msg { return SubmittedMsg{Metrics: metrics} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the check-in form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Daily Check-In") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[float64]().
				Title("Sleep Duration").
				Description("Hours of sleep last night").
				Options(sleepOptions()...).
				Value(&m.fb.sleep),
			huh.NewSelect[int]().
				Title("Energy Level").
				Description("Current energy level (1-5)").
				Options(ratingOptions()...).
				Value(&m.fb.hunger),
			huh.NewSelect[int]().
				Title("Muscle Soreness").
				Description("Muscle soreness level (1-5)").
				Options(ratingOptions()...).
				Value(&m.fb.soreness),
			huh.NewSelect[int]().
				Title("Overall Feeling").
				Description("How are you feeling today? (1-5)").
				Options(ratingOptions()...).
				Value(&m.fb.performance),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// sleepOptions enumerates 0 to 12 hours in half-hour steps.
func sleepOptions() []huh.Option[float64] {
	var opts []huh.Option[float64]
	for v := model.SleepHoursMin; v <= model.SleepHoursMax; v += model.SleepHoursStep {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%gh", v), v))
	}
	return opts
}

// ratingOptions enumerates the 1-5 rating scale.
func ratingOptions() []huh.Option[int] {
	var opts []huh.Option[int]
	for v := model.RatingMin; v <= model.RatingMax; v++ {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d", v), v))
	}
	return opts
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
