package remote

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates that a remote operation was attempted
// without a resolvable principal, or that the stored session has expired.
// Callers must not retry; the user has to sign in again.
var ErrUnauthenticated = errors.New("not authenticated")

// IsUnauthenticated reports whether err (or any error in its chain)
// is ErrUnauthenticated.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// StoreError wraps a network or service failure from the hosted store.
// Operations that fail with a StoreError are not retried automatically.
type StoreError struct {
	Op     string
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote store: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err (or any error in its chain)
// is a StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
