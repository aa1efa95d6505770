package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/engine"
	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// SubmissionService records formal handovers of a case to a court and
// drives the matching lifecycle transition
type SubmissionService interface {
	// SubmitToCourt records a submission and moves the case to
	// SUBMITTED_TO_COURT through the engine
	SubmitToCourt(ctx context.Context, caseID, courtID string, actor lifecycle.Actor) (*entity.CourtSubmission, error)

	// Latest returns the case's most recent submission
	Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error)

	// ListByCase returns all submissions of a case
	ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error)
}

type submissionServiceImpl struct {
	submissionRepo port.SubmissionRepository
	caseRepo       port.CaseRepository
	auditRepo      port.AuditRepository
	txManager      port.TransactionManager
	engine         engine.Engine
	logger         *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo port.SubmissionRepository,
	caseRepo port.CaseRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	eng engine.Engine,
	logger *zap.Logger,
) SubmissionService {
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		caseRepo:       caseRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		engine:         eng,
		logger:         logger,
	}
}

// SubmitToCourt records a submission and advances the case state
func (s *submissionServiceImpl) SubmitToCourt(ctx context.Context, caseID, courtID string, actor lifecycle.Actor) (*entity.CourtSubmission, error) {
	if actor.Role != lifecycle.RolePolice && actor.Role != lifecycle.RoleSHO {
		return nil, fmt.Errorf("%w: only police may submit a case to court", lifecycle.ErrForbidden)
	}
	if courtID == "" {
		return nil, fmt.Errorf("court ID is required")
	}

	// Pre-flight through the engine so an illegal submission never records
	// a submission row
	decision, err := s.engine.CanTransition(ctx, caseID, lifecycle.StateSubmittedToCourt, actor)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		if decision.Err != nil {
			return nil, decision.Err
		}
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrInvalidState, decision.Reason)
	}

	submission := &entity.CourtSubmission{
		CaseID:      caseID,
		CourtID:     courtID,
		SubmittedBy: actor.ID,
		SubmittedAt: time.Now(),
	}

	// Record the submission and advance the state in one transaction so a
	// lost transition race never leaves an orphaned submission row behind.
	// The engine joins the transaction already carried by the context.
	var result *engine.TransitionResult
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.submissionRepo.Create(txCtx, submission); err != nil {
			return err
		}

		r, err := s.engine.RequestTransition(txCtx, caseID, lifecycle.StateSubmittedToCourt, actor, engine.TransitionContext{
			Reason:            fmt.Sprintf("Charge sheet submitted to court %s", courtID),
			CourtSubmissionID: &submission.ID,
		})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Case submitted to court",
		zap.String("case_id", caseID),
		zap.String("court_id", courtID),
		zap.Int("version", submission.SubmissionVersion),
		zap.String("state", result.Snapshot.CurrentState.String()))

	return submission, nil
}

// Latest returns the case's most recent submission
func (s *submissionServiceImpl) Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error) {
	return s.submissionRepo.Latest(ctx, caseID)
}

// ListByCase returns all submissions of a case
func (s *submissionServiceImpl) ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error) {
	return s.submissionRepo.ListByCase(ctx, caseID)
}
