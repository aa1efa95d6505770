package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced case does not exist
	ErrNotFound = errors.New("case not found")

	// ErrForbidden is returned when the actor's role or organization does not permit the transition
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when the case's current data forbids any transition (e.g. already archived)
	ErrInvalidState = errors.New("invalid case state")

	// ErrInvalidTransition is returned when the requested edge is not in the transition graph
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConflict is returned when a concurrent transition won the race and retries are exhausted
	ErrConflict = errors.New("concurrent transition conflict")

	// ErrUnavailable is returned when the persistence layer fails unexpectedly
	ErrUnavailable = errors.New("storage unavailable")
)

// TransitionError reports an illegal transition together with the current
// state and the legal next states, so callers can tell users what is allowed.
type TransitionError struct {
	Current State
	Target  State
	Legal   []State
}

func (e *TransitionError) Error() string {
	if len(e.Legal) == 0 {
		return fmt.Sprintf("cannot transition to %s: case is in terminal state %s", e.Target, e.Current)
	}
	names := make([]string, len(e.Legal))
	for i, s := range e.Legal {
		names[i] = s.String()
	}
	return fmt.Sprintf("cannot transition from %s to %s; legal next states: %s",
		e.Current, e.Target, strings.Join(names, ", "))
}

// Unwrap makes the error match ErrInvalidTransition under errors.Is
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
