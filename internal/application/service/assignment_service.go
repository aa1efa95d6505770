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

// AssignmentService manages officer assignments. Assigning the first officer
// moves the case into UNDER_INVESTIGATION through the lifecycle engine.
type AssignmentService interface {
	Assign(ctx context.Context, caseID, officerID string, actor lifecycle.Actor) (*entity.Assignment, error)
	Unassign(ctx context.Context, caseID string, actor lifecycle.Actor) error
	ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error)
}

type assignmentServiceImpl struct {
	assignmentRepo port.AssignmentRepository
	caseRepo       port.CaseRepository
	stateRepo      port.StateRepository
	auditRepo      port.AuditRepository
	txManager      port.TransactionManager
	engine         engine.Engine
	logger         *zap.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignmentRepo port.AssignmentRepository,
	caseRepo port.CaseRepository,
	stateRepo port.StateRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	eng engine.Engine,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentServiceImpl{
		assignmentRepo: assignmentRepo,
		caseRepo:       caseRepo,
		stateRepo:      stateRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		engine:         eng,
		logger:         logger,
	}
}

// Assign assigns an officer to a case. SHO only. Any previous open
// assignment is closed first so at most one stays open.
func (s *assignmentServiceImpl) Assign(ctx context.Context, caseID, officerID string, actor lifecycle.Actor) (*entity.Assignment, error) {
	if actor.Role != lifecycle.RoleSHO {
		return nil, fmt.Errorf("%w: only an SHO may assign cases", lifecycle.ErrForbidden)
	}
	if officerID == "" {
		return nil, fmt.Errorf("officer ID is required")
	}

	kase, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load case: %v", lifecycle.ErrUnavailable, err)
	}
	if kase == nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, caseID)
	}
	if kase.IsArchived {
		return nil, fmt.Errorf("%w: case is already closed/archived", lifecycle.ErrInvalidState)
	}
	if kase.PoliceStationID != actor.OrganizationID {
		return nil, fmt.Errorf("%w: case belongs to a different police station", lifecycle.ErrForbidden)
	}

	now := time.Now()
	assignment := &entity.Assignment{
		CaseID:     caseID,
		OfficerID:  officerID,
		AssignedBy: actor.ID,
		AssignedAt: now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assignmentRepo.CloseOpen(txCtx, caseID, now); err != nil {
			return fmt.Errorf("close open assignment: %w", err)
		}
		if err := s.assignmentRepo.Create(txCtx, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		return s.auditRepo.Append(txCtx, &entity.AuditEntry{
			UserID:   actor.ID,
			Action:   entity.AuditCaseAssigned,
			Entity:   "CASE",
			EntityID: caseID,
		})
	})
	if err != nil {
		return nil, err
	}

	// First assignment starts the investigation
	state, err := s.stateRepo.Get(ctx, caseID)
	if err == nil && state != nil && state.CurrentState == lifecycle.StateFIRRegistered {
		_, err := s.engine.RequestTransition(ctx, caseID, lifecycle.StateUnderInvestigation, actor, engine.TransitionContext{
			Reason: fmt.Sprintf("Case assigned to officer %s", officerID),
		})
		if err != nil {
			s.logger.Warn("Assignment recorded but investigation start failed",
				zap.String("case_id", caseID),
				zap.Error(err))
		}
	}

	s.logger.Info("Case assigned",
		zap.String("case_id", caseID),
		zap.String("officer_id", officerID),
		zap.String("assigned_by", actor.ID))

	return assignment, nil
}

// Unassign ends the case's current assignment. SHO only.
func (s *assignmentServiceImpl) Unassign(ctx context.Context, caseID string, actor lifecycle.Actor) error {
	if actor.Role != lifecycle.RoleSHO {
		return fmt.Errorf("%w: only an SHO may unassign cases", lifecycle.ErrForbidden)
	}

	open, err := s.assignmentRepo.Open(ctx, caseID)
	if err != nil {
		return fmt.Errorf("%w: load assignment: %v", lifecycle.ErrUnavailable, err)
	}
	if open == nil {
		return fmt.Errorf("%w: case has no assigned officer", lifecycle.ErrInvalidState)
	}

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assignmentRepo.CloseOpen(txCtx, caseID, time.Now()); err != nil {
			return fmt.Errorf("close assignment: %w", err)
		}
		return s.auditRepo.Append(txCtx, &entity.AuditEntry{
			UserID:   actor.ID,
			Action:   entity.AuditCaseUnassigned,
			Entity:   "CASE",
			EntityID: caseID,
		})
	})
}

// ListByCase returns all assignments of a case
func (s *assignmentServiceImpl) ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error) {
	return s.assignmentRepo.ListByCase(ctx, caseID)
}
