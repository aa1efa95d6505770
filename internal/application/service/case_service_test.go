package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

func newCaseService(caseRepo *mockCaseRepo, stateRepo *mockStateRepo, auditRepo *mockAuditRepo) CaseService {
	return NewCaseService(caseRepo, stateRepo, &mockHistoryRepo{}, auditRepo, &mockTxManager{}, zap.NewNop())
}

func TestRegisterCase(t *testing.T) {
	var createdCase *entity.Case
	var createdFIR *entity.FIR
	var initState lifecycle.State

	caseRepo := &mockCaseRepo{
		createFunc: func(ctx context.Context, c *entity.Case, fir *entity.FIR) error {
			createdCase = c
			createdFIR = fir
			return nil
		},
	}
	stateRepo := &mockStateRepo{
		initFunc: func(ctx context.Context, caseID string, s lifecycle.State) error {
			initState = s
			return nil
		},
	}
	auditRepo := &mockAuditRepo{}
	svc := newCaseService(caseRepo, stateRepo, auditRepo)

	actor := lifecycle.Actor{ID: "off-kumar", Role: lifecycle.RolePolice, OrganizationID: "PS-CENTRAL"}
	kase, err := svc.RegisterCase(context.Background(), FIRIntake{
		FIRNumber:       "FIR/2026/0042",
		IncidentDate:    time.Now(),
		SectionsApplied: "IPC 379",
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if kase.ID == "" {
		t.Error("case ID should be generated")
	}
	if createdCase == nil || createdFIR == nil {
		t.Fatal("case and FIR should be persisted together")
	}
	if createdCase.FIRID != createdFIR.ID {
		t.Error("case must reference its FIR")
	}
	if createdCase.PoliceStationID != actor.OrganizationID {
		t.Errorf("PoliceStationID = %s, want %s", createdCase.PoliceStationID, actor.OrganizationID)
	}
	if initState != lifecycle.StateFIRRegistered {
		t.Errorf("initial state = %s, want FIR_REGISTERED", initState)
	}
	if len(auditRepo.entries) != 1 || auditRepo.entries[0].Action != entity.AuditCaseCreated {
		t.Errorf("audit entries = %+v", auditRepo.entries)
	}
}

func TestRegisterCase_RoleGate(t *testing.T) {
	svc := newCaseService(&mockCaseRepo{}, &mockStateRepo{}, &mockAuditRepo{})

	for _, role := range []lifecycle.Role{lifecycle.RoleCourtClerk, lifecycle.RoleJudge} {
		actor := lifecycle.Actor{ID: "u1", Role: role, OrganizationID: "COURT-1"}
		_, err := svc.RegisterCase(context.Background(), FIRIntake{FIRNumber: "FIR/2026/1"}, actor)
		if !errors.Is(err, lifecycle.ErrForbidden) {
			t.Errorf("role %s: expected ErrForbidden, got %v", role, err)
		}
	}
}

func TestRegisterCase_RequiresFIRNumber(t *testing.T) {
	svc := newCaseService(&mockCaseRepo{}, &mockStateRepo{}, &mockAuditRepo{})

	actor := lifecycle.Actor{ID: "off-1", Role: lifecycle.RolePolice, OrganizationID: "PS-1"}
	if _, err := svc.RegisterCase(context.Background(), FIRIntake{}, actor); err == nil {
		t.Error("expected error for missing FIR number")
	}
}

func TestRegisterCase_InvalidFIRNumber(t *testing.T) {
	svc := newCaseService(&mockCaseRepo{}, &mockStateRepo{}, &mockAuditRepo{})

	actor := lifecycle.Actor{ID: "off-1", Role: lifecycle.RolePolice, OrganizationID: "PS-1"}
	for _, firNumber := range []string{"FIR 2026 0042", "FIR/2026/", "/2026/0042", "FIR#42"} {
		if _, err := svc.RegisterCase(context.Background(), FIRIntake{FIRNumber: firNumber}, actor); err == nil {
			t.Errorf("expected error for malformed FIR number %q", firNumber)
		}
	}
}

func TestGetCase_NotFound(t *testing.T) {
	caseRepo := &mockCaseRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Case, error) {
			return nil, nil
		},
	}
	svc := newCaseService(caseRepo, &mockStateRepo{}, &mockAuditRepo{})

	_, err := svc.GetCase(context.Background(), "missing")
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetState(t *testing.T) {
	stateRepo := &mockStateRepo{
		getFunc: func(ctx context.Context, caseID string) (*entity.CaseState, error) {
			return &entity.CaseState{CaseID: caseID, CurrentState: lifecycle.StateTrialOngoing}, nil
		},
	}
	svc := newCaseService(&mockCaseRepo{}, stateRepo, &mockAuditRepo{})

	state, err := svc.GetState(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.CurrentState != lifecycle.StateTrialOngoing {
		t.Errorf("state = %s, want TRIAL_ONGOING", state.CurrentState)
	}
}
