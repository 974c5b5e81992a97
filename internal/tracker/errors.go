package tracker

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError indicates that input was rejected before any store call.
// Nothing is persisted when a ValidationError is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// RateLimitError indicates that an authentication attempt was rejected by
// the client-side attempt limiter.
type RateLimitError struct {
	RetryIn time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryIn.Round(time.Second))
}

// IsRateLimitError reports whether err (or any error in its chain) is a
// RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
