package engine

import (
	"context"
	"time"

	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// TransitionContext carries transition-specific payload
type TransitionContext struct {
	// Reason is recorded in the state history entry
	Reason string

	// CourtSubmissionID optionally links the transition to a submission
	CourtSubmissionID *int64
}

// StateSnapshot is the case's state after a successful transition
type StateSnapshot struct {
	CaseID       string          `json:"case_id"`
	CurrentState lifecycle.State `json:"current_state"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TransitionResult reports the outcome of a successful transition
type TransitionResult struct {
	Snapshot StateSnapshot `json:"snapshot"`

	// ReportRequested is true when closure-report generation was triggered
	ReportRequested bool `json:"report_requested"`
}

// Decision is the read-only answer to a pre-flight transition check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`

	// Err carries the typed failure behind a denial so callers that act on
	// the decision can surface the same kind RequestTransition would
	Err error `json:"-"`
}

// Engine is the sole authority for changing a case's current state. No other
// code path writes the current-state record.
type Engine interface {
	// RequestTransition validates and atomically applies a state transition,
	// appending history and audit records. On transition to ARCHIVED the case
	// is flagged archived and closure-report generation is requested
	// post-commit, best-effort.
	RequestTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc TransitionContext) (*TransitionResult, error)

	// CanTransition evaluates the same preconditions as RequestTransition
	// without applying effects
	CanTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (Decision, error)

	// NextStates returns the legal next states of a given current state
	NextStates(from lifecycle.State) []lifecycle.State

	// PermittedTargets returns the next states the actor could actually
	// reach on this case, filtered by role and organization gates
	PermittedTargets(ctx context.Context, caseID string, actor lifecycle.Actor) ([]lifecycle.State, error)
}
