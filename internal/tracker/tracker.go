// Package tracker implements the dual-mode data layer behind the UI:
// daily check-in upsert, rolling averages, the skills board, and the
// performance log. Every operation resolves the current identity mode and
// dispatches to either the guest store (local SQLite) or the remote store
// (hosted service); nothing outside this package branches on guest state.
package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/picklepulse/pulse/internal/model"
	"github.com/picklepulse/pulse/internal/remote"
	"github.com/picklepulse/pulse/internal/session"
	"github.com/picklepulse/pulse/internal/store"
)

// Attempt limits for the authentication paths.
const (
	signInMaxAttempts = 5
	signInWindow      = 5 * time.Minute
	signUpMaxAttempts = 3
	signUpWindow      = 10 * time.Minute
	resetMaxAttempts  = 3
	resetWindow       = 10 * time.Minute
)

// Config wires a Tracker's collaborators. Guest and Remote are the two
// Store implementations; Session decides which one serves a given call.
type Config struct {
	Session *session.Manager
	Guest   store.Store
	Remote  store.Store

	// Auth and the token callbacks are nil/unset in guest-only setups
	// (e.g., tests); sign-in attempts then fail cleanly.
	Auth         *remote.AuthClient
	SaveSession  func(*remote.Session) error
	ClearSession func() error

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Tracker is the application service exposed to the UI layer.
type Tracker struct {
	session      *session.Manager
	guest        store.Store
	remote       store.Store
	auth         *remote.AuthClient
	saveSession  func(*remote.Session) error
	clearSession func() error
	signInLimit  *RateLimiter
	signUpLimit  *RateLimiter
	resetLimit   *RateLimiter
	now          func() time.Time
}

// New creates a Tracker from the given configuration.
func New(cfg Config) *Tracker {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		session:      cfg.Session,
		guest:        cfg.Guest,
		remote:       cfg.Remote,
		auth:         cfg.Auth,
		saveSession:  cfg.SaveSession,
		clearSession: cfg.ClearSession,
		signInLimit:  NewRateLimiter(signInMaxAttempts, signInWindow),
		signUpLimit:  NewRateLimiter(signUpMaxAttempts, signUpWindow),
		resetLimit:   NewRateLimiter(resetMaxAttempts, resetWindow),
		now:          now,
	}
}

// activeStore resolves the store for the current identity mode.
func (t *Tracker) activeStore() store.Store {
	if t.session.IsGuest() {
		return t.guest
	}
	return t.remote
}

// === Identity mode ===

// IsGuestMode reports whether the client is in guest mode.
func (t *Tracker) IsGuestMode() bool {
	return t.session.IsGuest()
}

// EnterGuestMode switches to guest mode under a fresh guest identifier.
func (t *Tracker) EnterGuestMode() error {
	if _, err := t.session.EnterGuestMode(); err != nil {
		return fmt.Errorf("entering guest mode: %w", err)
	}
	return nil
}

// === Check-ins ===

// CheckInMetrics carries the four slider values of a daily check-in.
type CheckInMetrics struct {
	SleepHours  float64
	Hunger      int
	Soreness    int
	Performance int
}

// SubmitCheckIn validates the metrics and upserts today's check-in in the
// active store. Submitting again on the same day overwrites the metrics.
func (t *Tracker) SubmitCheckIn(ctx context.Context, m CheckInMetrics) error {
	if err := validateMetrics(m); err != nil {
		return err
	}

	entry := model.CheckIn{
		Date:        t.now(),
		SleepHours:  m.SleepHours,
		Hunger:      m.Hunger,
		Soreness:    m.Soreness,
		Performance: m.Performance,
	}

	if _, err := t.activeStore().UpsertCheckIn(ctx, entry); err != nil {
		return fmt.Errorf("submitting check-in: %w", err)
	}

	return nil
}

// TodayStatus reports whether the owner has checked in today. With no
// active session or guest identifier it reports false rather than failing;
// the widget treats that as "not yet checked in".
func (t *Tracker) TodayStatus(ctx context.Context) (bool, error) {
	checked, err := t.activeStore().HasCheckInOn(ctx, t.now())
	if remote.IsUnauthenticated(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return checked, nil
}

// Averages computes the rolling averages over the trailing windowDays
// (7, 14, or 30). Zero records in the window yield the all-zero sentinel.
// With no active session it degrades to the sentinel instead of failing;
// a real fetch failure during an authenticated session is surfaced.
func (t *Tracker) Averages(ctx context.Context, windowDays int) (Averages, error) {
	if !ValidWindow(windowDays) {
		return Averages{}, &ValidationError{
			Field:  "window",
			Reason: fmt.Sprintf("must be one of %v", Windows),
		}
	}

	end := t.now()
	start := end.AddDate(0, 0, -windowDays)

	entries, err := t.activeStore().ListCheckInsInRange(ctx, start, end)
	if remote.IsUnauthenticated(err) {
		return Averages{}, nil
	}
	if err != nil {
		return Averages{}, fmt.Errorf("loading check-ins for averages: %w", err)
	}

	return computeAverages(entries), nil
}

// === Skills board ===

// SkillBoard groups skills into display columns by their section field.
type SkillBoard struct {
	Planning   []model.Skill
	Practicing []model.Skill
}

// ListSkills loads all skills and partitions them into board columns.
// Column membership is exactly the section field.
func (t *Tracker) ListSkills(ctx context.Context) (SkillBoard, error) {
	skills, err := t.activeStore().ListSkills(ctx)
	if remote.IsUnauthenticated(err) {
		return SkillBoard{}, nil
	}
	if err != nil {
		return SkillBoard{}, fmt.Errorf("loading skills: %w", err)
	}

	var board SkillBoard
	for _, s := range skills {
		switch s.Section {
		case model.SectionPlanning:
			board.Planning = append(board.Planning, s)
		case model.SectionPracticing:
			board.Practicing = append(board.Practicing, s)
		}
	}

	return board, nil
}

// AddSkill validates and creates a skill in the given section.
func (t *Tracker) AddSkill(ctx context.Context, section, name string) (*model.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !model.ValidSection(section) {
		return nil, &ValidationError{
			Field:  "section",
			Reason: fmt.Sprintf("must be one of %v", model.Sections),
		}
	}

	skill, err := t.activeStore().CreateSkill(ctx, model.Skill{
		Name:    name,
		Section: section,
	})
	if err != nil {
		return nil, fmt.Errorf("adding skill: %w", err)
	}

	return skill, nil
}

// EditSkill applies the provided fields to an existing skill.
func (t *Tracker) EditSkill(ctx context.Context, id string, patch model.SkillPatch) (*model.Skill, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		patch.Name = &trimmed
	}
	if patch.Section != nil && !model.ValidSection(*patch.Section) {
		return nil, &ValidationError{
			Field:  "section",
			Reason: fmt.Sprintf("must be one of %v", model.Sections),
		}
	}

	skill, err := t.activeStore().UpdateSkill(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	return skill, nil
}

// DeleteSkill removes a skill, reporting whether it existed. The UI drops
// the item from its view only after a true result.
func (t *Tracker) DeleteSkill(ctx context.Context, id string) (bool, error) {
	return t.activeStore().DeleteSkill(ctx, id)
}

// === Performance log ===

// recentPerformanceLimit caps the dashboard's performance log view.
const recentPerformanceLimit = 10

// RecentPerformance returns the newest performance log entries. With no
// active session it degrades to an empty list.
func (t *Tracker) RecentPerformance(ctx context.Context) ([]model.PerformanceEntry, error) {
	entries, err := t.activeStore().RecentPerformanceEntries(ctx, recentPerformanceLimit)
	if remote.IsUnauthenticated(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading performance log: %w", err)
	}
	return entries, nil
}

// LogPerformance records a performance log entry dated today unless the
// entry carries an explicit date.
func (t *Tracker) LogPerformance(ctx context.Context, entry model.PerformanceEntry) error {
	if strings.TrimSpace(entry.Location) == "" {
		return &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if entry.Date.IsZero() {
		entry.Date = t.now()
	}

	if _, err := t.activeStore().CreatePerformanceEntry(ctx, entry); err != nil {
		return fmt.Errorf("logging performance: %w", err)
	}

	return nil
}

// === Authentication ===

// SignIn authenticates with email/password, persists the session tokens,
// and unconditionally exits guest mode on success.
func (t *Tracker) SignIn(ctx context.Context, email, password string) error {
	if t.auth == nil {
		return fmt.Errorf("signing in: no server configured")
	}

	if ok, retryIn := t.signInLimit.Check("signin:" + strings.ToLower(email)); !ok {
		return &RateLimitError{RetryIn: retryIn}
	}

	sess, err := t.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	if err := t.saveSession(sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	// Signing in always clears guest state, even if the client was
	// never a guest.
	if err := t.session.ExitGuestMode(); err != nil {
		return fmt.Errorf("exiting guest mode: %w", err)
	}

	return nil
}

// SignUp registers a new account. When the server requires email
// confirmation the returned session has no tokens and the user signs in
// after confirming.
func (t *Tracker) SignUp(ctx context.Context, email, password string) error {
	if t.auth == nil {
		return fmt.Errorf("signing up: no server configured")
	}

	if ok, retryIn := t.signUpLimit.Check("signup:" + strings.ToLower(email)); !ok {
		return &RateLimitError{RetryIn: retryIn}
	}

	sess, err := t.auth.SignUp(ctx, email, password)
	if err != nil {
		return err
	}

	if sess.AccessToken == "" {
		// Email confirmation pending; nothing to persist.
		return nil
	}

	if err := t.saveSession(sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	if err := t.session.ExitGuestMode(); err != nil {
		return fmt.Errorf("exiting guest mode: %w", err)
	}

	return nil
}

// RequestPasswordReset asks the server to email a password reset link.
func (t *Tracker) RequestPasswordReset(ctx context.Context, email string) error {
	if t.auth == nil {
		return fmt.Errorf("requesting password reset: no server configured")
	}

	if ok, retryIn := t.resetLimit.Check("reset:" + strings.ToLower(email)); !ok {
		return &RateLimitError{RetryIn: retryIn}
	}

	return t.auth.RequestPasswordReset(ctx, email)
}

// SignOut ends the current session. In guest mode it exits guest mode,
// deliberately orphaning that guest's local records. Otherwise it revokes
// the session server-side and clears local tokens; local cleanup happens
// even when the server call fails.
func (t *Tracker) SignOut(ctx context.Context) error {
	if t.session.IsGuest() {
		if err := t.session.ExitGuestMode(); err != nil {
			return fmt.Errorf("exiting guest mode: %w", err)
		}
		return nil
	}

	var remoteErr error
	if t.auth != nil {
		remoteErr = t.auth.SignOut(ctx)
	}

	if t.clearSession != nil {
		if err := t.clearSession(); err != nil {
			return fmt.Errorf("clearing session tokens: %w", err)
		}
	}

	if remoteErr != nil && !remote.IsUnauthenticated(remoteErr) {
		return remoteErr
	}

	return nil
}

// validateMetrics enforces the slider bounds before any store call.
func validateMetrics(m CheckInMetrics) error {
	if m.SleepHours < model.SleepHoursMin || m.SleepHours > model.SleepHoursMax {
		return &ValidationError{
			Field: "sleep hours",
			Reason: fmt.Sprintf("must be between %g and %g",
				model.SleepHoursMin, model.SleepHoursMax),
		}
	}
	if rem := math.Mod(m.SleepHours, model.SleepHoursStep); rem != 0 {
		return &ValidationError{
			Field:  "sleep hours",
			Reason: fmt.Sprintf("must be a multiple of %g", model.SleepHoursStep),
		}
	}

	ratings := []struct {
		field string
		value int
	}{
		{"hunger", m.Hunger},
		{"soreness", m.Soreness},
		{"performance", m.Performance},
	}
	for _, r := range ratings {
		if r.value < model.RatingMin || r.value > model.RatingMax {
			return &ValidationError{
				Field: r.field,
				Reason: fmt.Sprintf("must be between %d and %d",
					model.RatingMin, model.RatingMax),
			}
		}
	}

	return nil
}
