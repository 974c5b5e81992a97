package authview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/picklepulse/pulse/internal/theme"
)

// Auth form actions.
const (
	actionSignIn = "sign-in"
	actionSignUp = "sign-up"
	actionReset  = "reset"
	actionGuest  = "guest"
)

// SignInRequestedMsg asks the app to authenticate with the given
// credentials.
type SignInRequestedMsg struct {
	Email    string
	Password string
}

// SignUpRequestedMsg asks the app to register a new account.
type SignUpRequestedMsg struct {
	Email    string
	Password string
}

// PasswordResetRequestedMsg asks the app to request a password reset
// email for the given address.
type PasswordResetRequestedMsg struct {
	Email string
}

// GuestRequestedMsg asks the app to continue in guest mode.
type GuestRequestedMsg struct{}

type formBindings struct {
	action   string
	email    string
	password string
}

// Model is the Bubble Tea model for the sign-in screen.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	notice string
	width  int
	height int
}

// New creates the sign-in screen model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{action: actionSignIn},
		width:  width,
		height: height,
	}
}

// Start (re)initializes the form, optionally showing a notice from a
// previous failed attempt.
func (m *Model) Start(notice string) tea.Cmd {
	m.notice = notice
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the sign-in screen. The form is built on
// the first message rather than in Init, so the mutation survives Bubble
// Tea's value-copy model plumbing.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.height = ws.Height
	}
	if m.form == nil {
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		// Abandoning the form falls back to guest mode.
		return m, func() tea.Msg { return GuestRequestedMsg{} }
	}

	return m, cmd
}

func (m Model) handleSubmit() tea.Cmd {
	action := m.fb.action
	email := strings.TrimSpace(m.fb.email)
	password := m.fb.password

	return func() tea.Msg {
		switch action {
		case actionSignUp:
			return SignUpRequestedMsg{Email: email, Password: password}
		case actionReset:
			return PasswordResetRequestedMsg{Email: email}
		case actionGuest:
			return GuestRequestedMsg{}
		default:
			return SignInRequestedMsg{Email: email, Password: password}
		}
	}
}

// View renders the sign-in screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := theme.HeaderStyle.Render("PulsePoint")
	sub := theme.HelpStyle.Render("Track your daily health and skills")

	content := title + "\n" + sub + "\n\n"
	if m.notice != "" {
		content += theme.ErrorStyle.Render(m.notice) + "\n\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Sign in", actionSignIn),
					huh.NewOption("Create account", actionSignUp),
					huh.NewOption("Forgot password", actionReset),
					huh.NewOption("Continue as guest", actionGuest),
				).
				Value(&m.fb.action),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
		),
	).WithWidth(m.formWidth())
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
