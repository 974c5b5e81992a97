package testutil

import (
	"testing"

	"github.com/picklepulse/pulse/internal/store"
)

// TestOwnerID is the guest identifier used by stores from NewTestStore.
const TestOwnerID = "guest_test-owner"

// NewTestStore creates an in-memory GuestStore with all migrations applied
// and a fixed owner. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T) *store.GuestStore {
	t.Helper()
	return NewTestStoreWithOwner(t, func() (string, bool) {
		return TestOwnerID, true
	})
}

// NewTestStoreWithOwner is NewTestStore with a caller-supplied owner
// resolver, for tests that switch or drop the owner mid-test.
func NewTestStoreWithOwner(t *testing.T, owner store.OwnerFunc) *store.GuestStore {
	t.Helper()

	s, err := store.NewGuestStore(":memory:", owner)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
