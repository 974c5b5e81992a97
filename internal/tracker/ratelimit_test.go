package tracker

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := l.Check("signin:a@example.com"); !ok {
			t.Fatalf("attempt %d unexpectedly denied", i+1)
		}
	}

	ok, retryIn := l.Check("signin:a@example.com")
	if ok {
		t.Fatal("expected 4th attempt to be denied")
	}
	if retryIn <= 0 || retryIn > time.Minute {
		t.Errorf("unexpected retryIn %s", retryIn)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	l.Check("signup:b@example.com")
	l.Check("signup:b@example.com")
	if ok, _ := l.Check("signup:b@example.com"); ok {
		t.Fatal("expected denial inside window")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Check("signup:b@example.com"); !ok {
		t.Fatal("expected fresh window after expiry")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)

	if ok, _ := l.Check("signin:a@example.com"); !ok {
		t.Fatal("first key denied")
	}
	if ok, _ := l.Check("signin:b@example.com"); !ok {
		t.Fatal("second key should not share the first key's window")
	}
}
