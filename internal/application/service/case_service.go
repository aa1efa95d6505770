package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
	"github.com/kalp-cg/nyayasankalan/pkg/utils"
)

// FIRIntake carries the FIR details registered at case intake
type FIRIntake struct {
	FIRNumber       string
	IncidentDate    time.Time
	SectionsApplied string
	Description     string
}

// CaseService manages case intake and reads around the lifecycle engine
type CaseService interface {
	// RegisterCase creates a case from a FIR in the FIR_REGISTERED state
	RegisterCase(ctx context.Context, intake FIRIntake, actor lifecycle.Actor) (*entity.Case, error)

	// GetCase retrieves a case by ID
	GetCase(ctx context.Context, caseID string) (*entity.Case, error)

	// GetState retrieves the current state of a case
	GetState(ctx context.Context, caseID string) (*entity.CaseState, error)

	// GetHistory returns the case's state transition history in order
	GetHistory(ctx context.Context, caseID string) ([]*entity.StateTransition, error)

	// ListCases retrieves cases with pagination
	ListCases(ctx context.Context, limit, offset int) ([]*entity.Case, error)
}

type caseServiceImpl struct {
	caseRepo    port.CaseRepository
	stateRepo   port.StateRepository
	historyRepo port.HistoryRepository
	auditRepo   port.AuditRepository
	txManager   port.TransactionManager
	logger      *zap.Logger
}

// NewCaseService creates a new CaseService
func NewCaseService(
	caseRepo port.CaseRepository,
	stateRepo port.StateRepository,
	historyRepo port.HistoryRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
) CaseService {
	return &caseServiceImpl{
		caseRepo:    caseRepo,
		stateRepo:   stateRepo,
		historyRepo: historyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// RegisterCase creates a case from a FIR in the FIR_REGISTERED state
func (s *caseServiceImpl) RegisterCase(ctx context.Context, intake FIRIntake, actor lifecycle.Actor) (*entity.Case, error) {
	if actor.Role != lifecycle.RolePolice && actor.Role != lifecycle.RoleSHO {
		return nil, fmt.Errorf("%w: only police may register a case", lifecycle.ErrForbidden)
	}
	if err := utils.ValidateFIRNumber(intake.FIRNumber); err != nil {
		return nil, err
	}

	now := time.Now()
	fir := &entity.FIR{
		ID:              uuid.NewString(),
		FIRNumber:       intake.FIRNumber,
		PoliceStationID: actor.OrganizationID,
		IncidentDate:    intake.IncidentDate,
		SectionsApplied: intake.SectionsApplied,
		Description:     intake.Description,
		CreatedAt:       now,
	}
	kase := &entity.Case{
		ID:              uuid.NewString(),
		FIRID:           fir.ID,
		PoliceStationID: actor.OrganizationID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.Create(txCtx, kase, fir); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		if err := s.stateRepo.Init(txCtx, kase.ID, lifecycle.StateFIRRegistered); err != nil {
			return fmt.Errorf("init state: %w", err)
		}
		return s.auditRepo.Append(txCtx, &entity.AuditEntry{
			UserID:   actor.ID,
			Action:   entity.AuditCaseCreated,
			Entity:   "CASE",
			EntityID: kase.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Case registered",
		zap.String("case_id", kase.ID),
		zap.String("fir_number", fir.FIRNumber),
		zap.String("station", actor.OrganizationID))

	return kase, nil
}

// GetCase retrieves a case by ID
func (s *caseServiceImpl) GetCase(ctx context.Context, caseID string) (*entity.Case, error) {
	kase, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if kase == nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, caseID)
	}
	return kase, nil
}

// GetState retrieves the current state of a case
func (s *caseServiceImpl) GetState(ctx context.Context, caseID string) (*entity.CaseState, error) {
	state, err := s.stateRepo.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, caseID)
	}
	return state, nil
}

// GetHistory returns the case's state transition history in order
func (s *caseServiceImpl) GetHistory(ctx context.Context, caseID string) ([]*entity.StateTransition, error) {
	kase, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if kase == nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, caseID)
	}
	return s.historyRepo.ListByCase(ctx, caseID)
}

// ListCases retrieves cases with pagination
func (s *caseServiceImpl) ListCases(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	return s.caseRepo.List(ctx, limit, offset)
}
