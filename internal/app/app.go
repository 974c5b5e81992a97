package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/picklepulse/pulse/internal/remote"
	"github.com/picklepulse/pulse/internal/tracker"
	"github.com/picklepulse/pulse/internal/ui"
	"github.com/picklepulse/pulse/internal/ui/authview"
	"github.com/picklepulse/pulse/internal/ui/checkin"
	"github.com/picklepulse/pulse/internal/ui/perflog"
	"github.com/picklepulse/pulse/internal/ui/skills"
	"github.com/picklepulse/pulse/internal/ui/stats"
)

// ViewState represents the current active view.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewStats
	ViewSkills
	ViewPerfLog
	ViewCheckIn
)

// authResultMsg reports the outcome of a sign-in, sign-up, or guest-mode
// request.
type authResultMsg struct {
	action string
	err    error
}

// checkInResultMsg reports the outcome of a check-in submission.
type checkInResultMsg struct {
	err error
}

// todayStatusMsg carries whether the owner has checked in today.
type todayStatusMsg struct {
	checked bool
}

// signedOutMsg reports the outcome of a sign-out.
type signedOutMsg struct {
	err error
}

// resetResultMsg reports the outcome of a password reset request.
type resetResultMsg struct {
	err error
}

// Model is the root Bubble Tea model that routes between the sign-in
// screen and the dashboard views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	tracker      *tracker.Tracker
	refresher    *remote.SessionRefresher

	authView    authview.Model
	checkinView checkin.Model
	statsView   stats.Model
	skillsView  skills.Model
	perflogView perflog.Model

	ready        bool
	checkedToday bool
	statusMsg    string
}

// New creates the root application model. hasSession indicates that a
// stored access token or guest identity already exists, so the app can
// skip the sign-in screen.
func New(t *tracker.Tracker, refresher *remote.SessionRefresher, windowDays int, hasSession bool) Model {
	view := ViewAuth
	if hasSession {
		view = ViewStats
	}

	return Model{
		currentView: view,
		tracker:     t,
		refresher:   refresher,
		authView:    authview.New(80, 24),
		checkinView: checkin.New(80, 24),
		statsView:   stats.New(t, windowDays, 80, 24),
		skillsView:  skills.New(t, 80, 24),
		perflogView: perflog.New(t, 80, 24),
	}
}

// Init starts the initial view and, for an existing session, the
// background token refresher. The auth form builds itself on the first
// window size message, so there is nothing to start here.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewAuth {
		return nil
	}
	return m.enterDashboard()
}

// enterDashboard loads all dashboard panels and starts the refresher.
func (m *Model) enterDashboard() tea.Cmd {
	cmds := []tea.Cmd{
		m.statsView.Reload(),
		m.skillsView.Reload(),
		m.perflogView.Reload(),
		m.fetchTodayStatus(),
	}
	if m.refresher != nil && !m.tracker.IsGuestMode() {
		cmds = append(cmds, m.refresher.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.authView.SetSize(w, h)
		m.checkinView.SetSize(w, h)
		m.statsView.SetSize(w, h)
		m.skillsView.SetSize(w, h)
		m.perflogView.SetSize(w, h)
		// Forward to the active view so huh forms can size themselves.
		return m.updateActiveView(msg)

	case authview.SignInRequestedMsg:
		return m, m.signIn(msg.Email, msg.Password)

	case authview.SignUpRequestedMsg:
		return m, m.signUp(msg.Email, msg.Password)

	case authview.PasswordResetRequestedMsg:
		return m, m.requestPasswordReset(msg.Email)

	case authview.GuestRequestedMsg:
		return m, m.enterGuestMode()

	case resetResultMsg:
		if msg.err != nil {
			return m, m.authView.Start(errorMessage(msg.err))
		}
		return m, m.authView.Start("Password reset email sent. Check your inbox.")

	case authResultMsg:
		if msg.err != nil {
			return m, m.authView.Start(errorMessage(msg.err))
		}
		m.currentView = ViewStats
		m.statusMsg = ""
		if msg.action == "sign-up" {
			m.statusMsg = "Account created. Check your email if confirmation is required."
		}
		return m, m.enterDashboard()

	case checkin.SubmittedMsg:
		m.currentView = ViewStats
		return m, m.submitCheckIn(msg.Metrics)

	case checkin.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case checkInResultMsg:
		if msg.err != nil {
			m.statusMsg = errorMessage(msg.err)
			return m, nil
		}
		m.statusMsg = "Check-in saved"
		// Averages and the today flag refetch in full after a submit.
		return m, tea.Batch(m.statsView.Reload(), m.fetchTodayStatus())

	case todayStatusMsg:
		m.checkedToday = msg.checked
		return m, nil

	case remote.RefreshResultMsg:
		if msg.Error != nil {
			if remote.IsUnauthenticated(msg.Error) {
				m.statusMsg = "Session expired. Press o to sign out and back in."
			} else {
				m.statusMsg = "Session refresh failed: " + msg.Error.Error()
			}
		}
		return m, m.refresher.WaitForNextResult()

	case signedOutMsg:
		if msg.err != nil {
			m.statusMsg = errorMessage(msg.err)
			return m, nil
		}
		m.currentView = ViewAuth
		m.checkedToday = false
		m.statusMsg = ""
		return m, m.authView.Start("Signed out")

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey handles keys that work on every dashboard view. Keys
// never fire on the auth screen or inside the check-in form, where huh
// owns the input.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		if m.refresher != nil {
			m.refresher.Stop()
		}
		return tea.Quit, true
	}

	if m.currentView == ViewAuth || m.currentView == ViewCheckIn {
		return nil, false
	}
	if m.currentView == ViewSkills && m.skillsView.Editing() {
		return nil, false
	}
	if m.currentView == ViewPerfLog && m.perflogView.Editing() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		if m.refresher != nil {
			m.refresher.Stop()
		}
		return tea.Quit, true
	case "1":
		m.currentView = ViewStats
		m.statusMsg = ""
		return m.statsView.Reload(), true
	case "2":
		m.currentView = ViewSkills
		m.statusMsg = ""
		return m.skillsView.Reload(), true
	case "3":
		m.currentView = ViewPerfLog
		m.statusMsg = ""
		return m.perflogView.Reload(), true
	case "c":
		m.previousView = m.currentView
		m.currentView = ViewCheckIn
		m.statusMsg = ""
		return m.checkinView.Start(), true
	case "o":
		return m.signOut(), true
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewCheckIn:
		m.checkinView, cmd = m.checkinView.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case ViewSkills:
		m.skillsView, cmd = m.skillsView.Update(msg)
	case ViewPerfLog:
		m.perflogView, cmd = m.perflogView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewAuth {
		return m.authView.View()
	}

	header := m.layout.RenderHeader("PulsePoint", m.modeLabel())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCheckIn:
		return m.checkinView.View()
	case ViewStats:
		banner := "Not checked in today (press c)"
		if m.checkedToday {
			banner = "✓ Checked in today"
		}
		return banner + "\n" + m.statsView.View()
	case ViewSkills:
		return m.skillsView.View()
	case ViewPerfLog:
		return m.perflogView.View()
	default:
		return ""
	}
}

// modeLabel describes the identity mode for the header.
func (m Model) modeLabel() string {
	if m.tracker.IsGuestMode() {
		return "guest mode"
	}
	return "signed in"
}

// keyHints returns keyboard shortcut hints for the status bar, or the
// pending status message when one is set.
func (m Model) keyHints() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewCheckIn:
		return "enter submit | esc cancel"
	case ViewSkills:
		return "a add | e edit | d delete | h/l/j/k move | 1 stats | 3 log | q quit"
	case ViewPerfLog:
		return "a add entry | r refresh | 1 stats | 2 skills | q quit"
	default:
		return "c check in | w window | 2 skills | 3 log | o sign out | q quit"
	}
}

func (m Model) signIn(email, password string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.SignIn(context.Background(), email, password)
		return authResultMsg{action: "sign-in", err: err}
	}
}

func (m Model) signUp(email, password string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.SignUp(context.Background(), email, password)
		return authResultMsg{action: "sign-up", err: err}
	}
}

func (m Model) enterGuestMode() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.EnterGuestMode()
		return authResultMsg{action: "guest", err: err}
	}
}

func (m Model) requestPasswordReset(email string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.RequestPasswordReset(context.Background(), email)
		return resetResultMsg{err: err}
	}
}

func (m Model) signOut() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.SignOut(context.Background())
		return signedOutMsg{err: err}
	}
}

func (m Model) submitCheckIn(metrics tracker.CheckInMetrics) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		err := t.SubmitCheckIn(context.Background(), metrics)
		return checkInResultMsg{err: err}
	}
}

func (m Model) fetchTodayStatus() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		checked, err := t.TodayStatus(context.Background())
		if err != nil {
			return todayStatusMsg{checked: false}
		}
		return todayStatusMsg{checked: checked}
	}
}

// errorMessage maps service errors to user-facing status bar text.
func errorMessage(err error) string {
	var vErr *tracker.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	var rlErr *tracker.RateLimitError
	if errors.As(err, &rlErr) {
		return fmt.Sprintf("Too many attempts. Try again in %s.", rlErr.RetryIn.Round(time.Second))
	}

	if remote.IsUnauthenticated(err) {
		return "Not signed in"
	}

	var sErr *remote.StoreError
	if errors.As(err, &sErr) {
		return "Server error: " + sErr.Error()
	}

	return err.Error()
}
