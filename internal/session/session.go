// Package session tracks the client's identity mode: either an anonymous
// guest session identified by a locally generated opaque id, or an
// authenticated session whose principal is resolved from the stored access
// token. The mode survives process restarts via a small state file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// state is the persisted identity mode. The guest identifier is present
// if and only if the guest flag is set.
type state struct {
	IsGuest bool   `json:"is_guest"`
	GuestID string `json:"guest_id,omitempty"`
}

// Manager owns the identity mode flag. It is read-mostly and used from a
// single goroutine (the Bubble Tea update loop), so it carries no lock.
type Manager struct {
	path  string
	state state
}

// DefaultStatePath returns the default location of the session state file.
func DefaultStatePath(configDir string) string {
	return filepath.Join(configDir, "session.json")
}

// Load reads the session state from path. A missing file yields a manager
// in the initial "not guest" state rather than an error.
func Load(path string) (*Manager, error) {
	m := &Manager{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session state %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &m.state); err != nil {
		return nil, fmt.Errorf("parsing session state %s: %w", path, err)
	}

	// A guest id without the guest flag (or vice versa) means the file
	// was tampered with or half-written; reset to the initial state.
	if m.state.IsGuest != (m.state.GuestID != "") {
		m.state = state{}
	}

	return m, nil
}

// IsGuest reports whether the client is in guest mode.
func (m *Manager) IsGuest() bool {
	return m.state.IsGuest
}

// GuestID returns the active guest identifier. The second return value is
// false when not in guest mode.
func (m *Manager) GuestID() (string, bool) {
	if !m.state.IsGuest {
		return "", false
	}
	return m.state.GuestID, true
}

// EnterGuestMode generates a fresh opaque guest identifier, sets the guest
// flag, and persists the state. Calling it while already in guest mode
// replaces the identifier, which orphans the previous session's records.
func (m *Manager) EnterGuestMode() (string, error) {
	id := "guest_" + uuid.New().String()
	m.state = state{IsGuest: true, GuestID: id}
	if err := m.save(); err != nil {
		return "", err
	}
	return id, nil
}

// ExitGuestMode unconditionally clears the guest flag and identifier and
// persists the state. It is invoked on every successful sign-in, whether
// or not the client was previously a guest.
func (m *Manager) ExitGuestMode() error {
	m.state = state{}
	return m.save()
}

func (m *Manager) save() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session state %s: %w", m.path, err)
	}

	return nil
}
