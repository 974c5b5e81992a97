package remote

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshResultMsg is a tea.Msg sent when a background token refresh
// completes.
type RefreshResultMsg struct {
	Session *Session
	Error   error
}

// checkInterval is how often the refresher inspects the stored token.
const checkInterval = time.Minute

// refreshLead is how long before expiry a refresh is attempted.
const refreshLead = 2 * time.Minute

// refreshTimeout bounds a single refresh round-trip.
const refreshTimeout = 30 * time.Second

// SessionRefresher keeps the stored session alive by exchanging the
// refresh token shortly before the access token expires. Token storage is
// abstracted behind accessor functions so the refresher stays decoupled
// from the keyring.
type SessionRefresher struct {
	auth         *AuthClient
	accessToken  func() (string, error)
	refreshToken func() (string, error)
	saveSession  func(*Session) error
	resultCh     chan RefreshResultMsg
	stopCh       chan struct{}
	mu           sync.Mutex
	running      bool
}

// NewSessionRefresher creates a refresher over the given auth client and
// token accessors.
func NewSessionRefresher(
	auth *AuthClient,
	accessToken func() (string, error),
	refreshToken func() (string, error),
	saveSession func(*Session) error,
) *SessionRefresher {
	return &SessionRefresher{
		auth:         auth,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		saveSession:  saveSession,
		resultCh:     make(chan RefreshResultMsg, 4),
		stopCh:       make(chan struct{}),
	}
}

// Start launches the background refresh loop and returns a tea.Cmd that
// waits for the first result.
func (r *SessionRefresher) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()

	return r.waitForResult()
}

// Stop halts the refresh loop.
func (r *SessionRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after processing a RefreshResultMsg to keep listening.
func (r *SessionRefresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}

func (r *SessionRefresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

func (r *SessionRefresher) loop() {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refreshIfNeeded()
		}
	}
}

// refreshIfNeeded exchanges the refresh token when the access token is
// about to expire. A missing session is not an error; the loop simply
// waits for the user to sign in.
func (r *SessionRefresher) refreshIfNeeded() {
	access, err := r.accessToken()
	if err != nil || access == "" {
		return
	}

	expiry, ok := tokenExpiry(access)
	if !ok || time.Until(expiry) > refreshLead {
		return
	}

	refresh, err := r.refreshToken()
	if err != nil || refresh == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	session, err := r.auth.Refresh(ctx, refresh)
	if err != nil {
		r.sendResult(RefreshResultMsg{Error: err})
		return
	}

	if err := r.saveSession(session); err != nil {
		r.sendResult(RefreshResultMsg{Error: err})
		return
	}

	r.sendResult(RefreshResultMsg{Session: session})
}

// sendResult sends a result without blocking the refresh loop.
func (r *SessionRefresher) sendResult(msg RefreshResultMsg) {
	select {
	case r.resultCh <- msg:
	default:
	}
}

// tokenExpiry reads the exp claim from an access token.
func tokenExpiry(raw string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
