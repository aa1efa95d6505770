package port

import (
	"context"
	"time"

	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// CaseRepository defines persistence operations for Case and its FIR
type CaseRepository interface {
	// Create inserts the case together with its originating FIR
	Create(ctx context.Context, c *entity.Case, fir *entity.FIR) error

	// GetByID retrieves a case by ID; returns nil when absent
	GetByID(ctx context.Context, id string) (*entity.Case, error)

	// MarkArchived sets the archival flag on a case
	MarkArchived(ctx context.Context, id string) error

	// SetClosureReportURL records the URL of a generated closure report
	SetClosureReportURL(ctx context.Context, id string, url string) error

	// ListArchivedWithoutReport returns archived cases whose closure report
	// has not been generated yet
	ListArchivedWithoutReport(ctx context.Context, limit int) ([]*entity.Case, error)

	// List retrieves cases with pagination
	List(ctx context.Context, limit, offset int) ([]*entity.Case, error)
}

// StateRepository defines persistence operations for the current case state
type StateRepository interface {
	// Init creates the current-state record at case creation
	Init(ctx context.Context, caseID string, s lifecycle.State) error

	// Get retrieves the current state of a case; returns nil when absent
	Get(ctx context.Context, caseID string) (*entity.CaseState, error)

	// CompareAndSet advances the state only if it still equals from,
	// reporting whether the swap happened. A false return means a concurrent
	// transition won the race.
	CompareAndSet(ctx context.Context, caseID string, from, to lifecycle.State) (bool, error)
}

// HistoryRepository defines persistence operations for the append-only
// state transition history
type HistoryRepository interface {
	Append(ctx context.Context, t *entity.StateTransition) error
	ListByCase(ctx context.Context, caseID string) ([]*entity.StateTransition, error)
}

// AssignmentRepository defines persistence operations for officer assignments
type AssignmentRepository interface {
	// Open returns the case's current assignment; nil when unassigned
	Open(ctx context.Context, caseID string) (*entity.Assignment, error)

	// Create inserts a new assignment record
	Create(ctx context.Context, a *entity.Assignment) error

	// CloseOpen ends the case's current assignment, if any
	CloseOpen(ctx context.Context, caseID string, at time.Time) error

	// ListByCase returns all assignments of a case ordered by AssignedAt
	ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error)
}

// SubmissionRepository defines persistence operations for court submissions
type SubmissionRepository interface {
	// Latest returns the case's most recent submission; nil when never submitted
	Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error)

	// Create inserts a submission, assigning the next monotonic version
	Create(ctx context.Context, s *entity.CourtSubmission) error

	// ListByCase returns all submissions of a case ordered by SubmittedAt
	ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error)
}

// AuditRepository is the append-only audit sink
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
