package tracker

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window attempt limiter keyed by caller-chosen
// strings (e.g., "signin:alice@example.com"). It guards the sign-in and
// sign-up paths against rapid-fire attempts.
type RateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*limitEntry
	now     func() time.Time
}

type limitEntry struct {
	attempts    int
	windowStart time.Time
}

// NewRateLimiter creates a limiter allowing max attempts per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*limitEntry),
		now:     time.Now,
	}
}

// Check records an attempt under key. It reports whether the attempt is
// allowed and, when denied, how long until the window resets.
func (l *RateLimiter) Check(key string) (allowed bool, retryIn time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictExpired(now)

	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.windowStart) >= l.window {
		l.entries[key] = &limitEntry{attempts: 1, windowStart: now}
		return true, 0
	}

	if entry.attempts >= l.max {
		return false, l.window - now.Sub(entry.windowStart)
	}

	entry.attempts++
	return true, 0
}

// evictExpired drops entries whose window has elapsed. Caller holds the lock.
func (l *RateLimiter) evictExpired(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}
