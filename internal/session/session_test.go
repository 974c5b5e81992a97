package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestLoadMissingFile(t *testing.T) {
	m, err := Load(statePath(t))
	if err != nil {
		t.Fatalf("loading missing file: %v", err)
	}
	if m.IsGuest() {
		t.Error("expected initial state to not be guest")
	}
	if _, ok := m.GuestID(); ok {
		t.Error("expected no guest id in initial state")
	}
}

func TestEnterGuestModePersists(t *testing.T) {
	path := statePath(t)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	id, err := m.EnterGuestMode()
	if err != nil {
		t.Fatalf("entering guest mode: %v", err)
	}
	if !strings.HasPrefix(id, "guest_") {
		t.Errorf("expected guest_ prefix, got %q", id)
	}

	// A fresh manager over the same file sees the persisted state.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if !reloaded.IsGuest() {
		t.Error("expected reloaded manager to be in guest mode")
	}
	gotID, ok := reloaded.GuestID()
	if !ok || gotID != id {
		t.Errorf("expected guest id %q after reload, got %q (ok=%v)", id, gotID, ok)
	}
}

func TestReEnterGuestModeIssuesFreshID(t *testing.T) {
	m, err := Load(statePath(t))
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	first, err := m.EnterGuestMode()
	if err != nil {
		t.Fatalf("first enter: %v", err)
	}
	second, err := m.EnterGuestMode()
	if err != nil {
		t.Fatalf("second enter: %v", err)
	}
	if first == second {
		t.Error("expected a fresh identifier on re-entry")
	}
}

func TestExitGuestModeClearsState(t *testing.T) {
	path := statePath(t)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if _, err := m.EnterGuestMode(); err != nil {
		t.Fatalf("entering guest mode: %v", err)
	}

	if err := m.ExitGuestMode(); err != nil {
		t.Fatalf("exiting guest mode: %v", err)
	}
	if m.IsGuest() {
		t.Error("expected guest flag cleared")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if reloaded.IsGuest() {
		t.Error("expected persisted state cleared")
	}
}

func TestExitGuestModeIdempotent(t *testing.T) {
	m, err := Load(statePath(t))
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	// Exiting without ever entering is a no-op, not an error; sign-in
	// calls it unconditionally.
	if err := m.ExitGuestMode(); err != nil {
		t.Fatalf("exiting from initial state: %v", err)
	}
}

func TestLoadResetsInconsistentState(t *testing.T) {
	path := statePath(t)

	// A guest id without the guest flag is a half-written state file.
	if err := os.WriteFile(path, []byte(`{"is_guest":false,"guest_id":"guest_x"}`), 0o600); err != nil {
		t.Fatalf("writing state file: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if m.IsGuest() {
		t.Error("expected inconsistent state to reset to not-guest")
	}
	if _, ok := m.GuestID(); ok {
		t.Error("expected no guest id after reset")
	}
}
