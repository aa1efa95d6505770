package service

import (
	"context"
	"time"

	"github.com/kalp-cg/nyayasankalan/internal/application/engine"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// Mock repositories, func-field style: unset fields fall back to benign defaults

type mockCaseRepo struct {
	createFunc  func(ctx context.Context, c *entity.Case, fir *entity.FIR) error
	getByIDFunc func(ctx context.Context, id string) (*entity.Case, error)
	listFunc    func(ctx context.Context, limit, offset int) ([]*entity.Case, error)
}

func (m *mockCaseRepo) Create(ctx context.Context, c *entity.Case, fir *entity.FIR) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c, fir)
	}
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Case{ID: id, PoliceStationID: "PS-CENTRAL"}, nil
}

func (m *mockCaseRepo) MarkArchived(ctx context.Context, id string) error { return nil }

func (m *mockCaseRepo) SetClosureReportURL(ctx context.Context, id string, url string) error {
	return nil
}

func (m *mockCaseRepo) ListArchivedWithoutReport(ctx context.Context, limit int) ([]*entity.Case, error) {
	return nil, nil
}

func (m *mockCaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Case{}, nil
}

type mockStateRepo struct {
	initFunc func(ctx context.Context, caseID string, s lifecycle.State) error
	getFunc  func(ctx context.Context, caseID string) (*entity.CaseState, error)
}

func (m *mockStateRepo) Init(ctx context.Context, caseID string, s lifecycle.State) error {
	if m.initFunc != nil {
		return m.initFunc(ctx, caseID, s)
	}
	return nil
}

func (m *mockStateRepo) Get(ctx context.Context, caseID string) (*entity.CaseState, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, caseID)
	}
	return &entity.CaseState{CaseID: caseID, CurrentState: lifecycle.StateFIRRegistered}, nil
}

func (m *mockStateRepo) CompareAndSet(ctx context.Context, caseID string, from, to lifecycle.State) (bool, error) {
	return true, nil
}

type mockHistoryRepo struct {
	entries []*entity.StateTransition
}

func (m *mockHistoryRepo) Append(ctx context.Context, t *entity.StateTransition) error {
	m.entries = append(m.entries, t)
	return nil
}

func (m *mockHistoryRepo) ListByCase(ctx context.Context, caseID string) ([]*entity.StateTransition, error) {
	return m.entries, nil
}

type mockAssignmentRepo struct {
	openFunc    func(ctx context.Context, caseID string) (*entity.Assignment, error)
	created     []*entity.Assignment
	closedCalls int
}

func (m *mockAssignmentRepo) Open(ctx context.Context, caseID string) (*entity.Assignment, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, caseID)
	}
	return nil, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	m.created = append(m.created, a)
	return nil
}

func (m *mockAssignmentRepo) CloseOpen(ctx context.Context, caseID string, at time.Time) error {
	m.closedCalls++
	return nil
}

func (m *mockAssignmentRepo) ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error) {
	return m.created, nil
}

type mockSubmissionRepo struct {
	latestFunc func(ctx context.Context, caseID string) (*entity.CourtSubmission, error)
	created    []*entity.CourtSubmission
}

func (m *mockSubmissionRepo) Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, caseID)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *entity.CourtSubmission) error {
	s.SubmissionVersion = len(m.created) + 1
	s.ID = int64(len(m.created) + 1)
	m.created = append(m.created, s)
	return nil
}

func (m *mockSubmissionRepo) ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error) {
	return m.created, nil
}

type mockAuditRepo struct {
	entries []*entity.AuditEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

type mockTxManager struct {
	withTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTxFunc != nil {
		return m.withTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// mockEngine records transition requests instead of applying them

type mockEngine struct {
	requestFunc func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error)
	canFunc     func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (engine.Decision, error)
	requests    []lifecycle.State
}

func (m *mockEngine) RequestTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
	m.requests = append(m.requests, target)
	if m.requestFunc != nil {
		return m.requestFunc(ctx, caseID, target, actor, tc)
	}
	return &engine.TransitionResult{
		Snapshot: engine.StateSnapshot{CaseID: caseID, CurrentState: target},
	}, nil
}

func (m *mockEngine) CanTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (engine.Decision, error) {
	if m.canFunc != nil {
		return m.canFunc(ctx, caseID, target, actor)
	}
	return engine.Decision{Allowed: true}, nil
}

func (m *mockEngine) NextStates(from lifecycle.State) []lifecycle.State {
	return lifecycle.NewCaseGraph().TargetsFrom(from)
}

func (m *mockEngine) PermittedTargets(ctx context.Context, caseID string, actor lifecycle.Actor) ([]lifecycle.State, error) {
	return nil, nil
}
