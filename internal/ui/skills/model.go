package skills

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/theme"
	"github.com/picklepulse/pulse/internal/tracker"
)

// boardLoadedMsg carries a freshly loaded skills board.
type boardLoadedMsg struct {
	board tracker.SkillBoard
	err   error
}

// opDoneMsg reports the outcome of an add/edit/delete operation.
type opDoneMsg struct {
	status string
	err    error
}

// mode tracks whether the board is browsing or showing the add/edit form.
type mode int

const (
	modeBrowse mode = iota
	modeForm
)

// formBindings holds form field values on the heap so huh's Value()
// pointers stay valid across model copies.
type formBindings struct {
	name    string
	section string
}

// Model is the Bubble Tea model for the skills kanban board.
type Model struct {
	tracker *tracker.Tracker
	board   tracker.SkillBoard
	col     int // 0 = planning, 1 = practicing
	row     int
	mode    mode
	form    *huh.Form
	fb      *formBindings
	editID  string
	status  string
	width   int
	height  int
}

// New creates a skills board model.
func New(t *tracker.Tracker, width, height int) Model {
	return Model{
		tracker: t,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init loads the board.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Reload refetches the board from the active store.
func (m Model) Reload() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		board, err := t.ListSkills(context.Background())
		return boardLoadedMsg{board: board, err: err}
	}
}

// Update handles messages for the skills board.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == modeForm {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case boardLoadedMsg:
		if msg.err != nil {
			m.status = "could not load skills: " + msg.err.Error()
			return m, nil
		}
		m.board = msg.board
		m.clampCursor()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		// The view drops/updates items only after the store confirmed
		// the mutation, by reloading from it.
		return m, m.load()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.col = 0
		m.clampCursor()
	case "l", "right":
		m.col = 1
		m.clampCursor()
	case "k", "up":
		if m.row > 0 {
			m.row--
		}
	case "j", "down":
		m.row++
		m.clampCursor()
	case "a":
		m.startForm("", "", m.currentSection())
		return m, m.form.Init()
	case "e":
		if skill, ok := m.selected(); ok {
			m.startForm(skill.ID, skill.Name, skill.Section)
			return m, m.form.Init()
		}
	case "d":
		if skill, ok := m.selected(); ok {
			return m, m.deleteSkill(skill.ID, skill.Name)
		}
	case "r":
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
		if m.editID != "" {
			return m, m.editSkill(m.editID, m.fb.name, m.fb.section)
		}
		return m, m.addSkill(m.fb.section, m.fb.name)
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeBrowse
		return m, nil
	}

	return m, cmd
}

func (m *Model) startForm(id, name, section string) {
	m.mode = modeForm
	m.editID = id
	m.fb.name = name
	m.fb.section = section

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Skill").
				Placeholder("e.g., Third shot drop").
				Value(&m.fb.name),
			huh.NewSelect[string]().
				Title("Section").
				Options(
					huh.NewOption("Planning", model.SectionPlanning),
					huh.NewOption("Practicing", model.SectionPracticing),
				).
				Value(&m.fb.section),
		),
	).WithWidth(m.formWidth())
}

func (m Model) addSkill(section, name string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		_, err := t.AddSkill(context.Background(), section, name)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "Skill added"}
	}
}

func (m Model) editSkill(id, name, section string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		_, err := t.EditSkill(context.Background(), id, model.SkillPatch{
			Name:    &name,
			Section: &section,
		})
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "Skill updated"}
	}
}

func (m Model) deleteSkill(id, name string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		found, err := t.DeleteSkill(context.Background(), id)
		if err != nil {
			return opDoneMsg{err: err}
		}
		if !found {
			return opDoneMsg{err: fmt.Errorf("skill %q no longer exists", name)}
		}
		return opDoneMsg{status: "Skill deleted"}
	}
}

// View renders the two board columns side by side.
func (m Model) View() string {
	if m.mode == modeForm {
		title := "Add Skill"
		if m.editID != "" {
			title = "Edit Skill"
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.PanelTitleStyle.Render(title) + "\n\n" + m.form.View())
	}

	colWidth := (m.width - 8) / 2
	if colWidth < 20 {
		colWidth = 20
	}

	planning := m.renderColumn("Planning", m.board.Planning, 0, colWidth)
	practicing := m.renderColumn("Practicing", m.board.Practicing, 1, colWidth)

	board := lipgloss.JoinHorizontal(lipgloss.Top, planning, " ", practicing)

	help := theme.HelpStyle.Render("a add · e edit · d delete · h/l columns · j/k items")
	status := ""
	if m.status != "" {
		status = "\n" + theme.HelpStyle.Render(m.status)
	}

	return theme.PanelStyle.Width(m.width - 2).Render(
		theme.PanelTitleStyle.Render("Skills Board") + "\n\n" +
			board + "\n\n" + help + status)
}

func (m Model) renderColumn(title string, items []model.Skill, col, width int) string {
	var lines []string
	lines = append(lines, theme.ColumnTitleStyle.Width(width).Render(title))

	if len(items) == 0 {
		lines = append(lines, theme.HelpStyle.Render("  (empty)"))
	}
	for i, skill := range items {
		style := theme.ListItemStyle
		if m.col == col && m.row == i {
			style = theme.SelectedItemStyle
		}
		lines = append(lines, style.MaxWidth(width).Render(skill.Name))
	}

	return lipgloss.NewStyle().Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Editing reports whether the inline add/edit form has input focus.
func (m Model) Editing() bool {
	return m.mode == modeForm
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) currentColumn() []model.Skill {
	if m.col == 0 {
		return m.board.Planning
	}
	return m.board.Practicing
}

func (m Model) currentSection() string {
	if m.col == 0 {
		return model.SectionPlanning
	}
	return model.SectionPracticing
}

func (m Model) selected() (model.Skill, bool) {
	items := m.currentColumn()
	if m.row < 0 || m.row >= len(items) {
		return model.Skill{}, false
	}
	return items[m.row], true
}

func (m *Model) clampCursor() {
	items := m.currentColumn()
	if m.row >= len(items) {
		m.row = len(items) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
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
