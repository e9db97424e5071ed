package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when Start or Stop is called out of
	// order.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrNotStopped is returned by Elapsed before the session has stopped.
	ErrNotStopped = errors.New("session not stopped")
)

// StateError describes a call the session rejected. The session is left
// unchanged.
type StateError struct {
	Op    string
	State State
	Err   error
}

// Error implements error interface
func (e *StateError) Error() string {
	return fmt.Sprintf("session: %s in state %s: %v", e.Op, e.State, e.Err)
}

// Unwrap implements error unwrapping
func (e *StateError) Unwrap() error {
	return e.Err
}
