// ABOUTME: Error taxonomy for measurement sessions
// ABOUTME: Validation, location and persistence failures are all recoverable

package session

import (
	"errors"
	"fmt"
)

// ErrLocationUnavailable is returned when a position fix or stream cannot be obtained.
var ErrLocationUnavailable = errors.New("location unavailable")

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// ErrNoRepository is returned when a session without a gateway is asked to persist.
var ErrNoRepository = errors.New("no repository configured")

// ValidationError reports bad user input. Session state is untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failed gateway round trip. It is never retried automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func locationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
}
