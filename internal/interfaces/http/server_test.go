package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/engine"
	"github.com/kalp-cg/nyayasankalan/internal/application/service"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

var testSecret = []byte("test-secret")

// Stubs

type stubEngine struct {
	requestFunc func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error)
	canFunc     func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (engine.Decision, error)
}

func (s *stubEngine) RequestTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
	if s.requestFunc != nil {
		return s.requestFunc(ctx, caseID, target, actor, tc)
	}
	return &engine.TransitionResult{
		Snapshot: engine.StateSnapshot{CaseID: caseID, CurrentState: target},
	}, nil
}

func (s *stubEngine) CanTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (engine.Decision, error) {
	if s.canFunc != nil {
		return s.canFunc(ctx, caseID, target, actor)
	}
	return engine.Decision{Allowed: true}, nil
}

func (s *stubEngine) NextStates(from lifecycle.State) []lifecycle.State {
	return lifecycle.NewCaseGraph().TargetsFrom(from)
}

func (s *stubEngine) PermittedTargets(ctx context.Context, caseID string, actor lifecycle.Actor) ([]lifecycle.State, error) {
	return []lifecycle.State{lifecycle.StateUnderInvestigation}, nil
}

type stubCaseService struct{}

func (s *stubCaseService) RegisterCase(ctx context.Context, intake service.FIRIntake, actor lifecycle.Actor) (*entity.Case, error) {
	return &entity.Case{ID: "case-1", PoliceStationID: actor.OrganizationID}, nil
}

func (s *stubCaseService) GetCase(ctx context.Context, caseID string) (*entity.Case, error) {
	return &entity.Case{ID: caseID}, nil
}

func (s *stubCaseService) GetState(ctx context.Context, caseID string) (*entity.CaseState, error) {
	return &entity.CaseState{CaseID: caseID, CurrentState: lifecycle.StateFIRRegistered}, nil
}

func (s *stubCaseService) GetHistory(ctx context.Context, caseID string) ([]*entity.StateTransition, error) {
	return nil, nil
}

func (s *stubCaseService) ListCases(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	return nil, nil
}

type stubAssignmentService struct{}

func (s *stubAssignmentService) Assign(ctx context.Context, caseID, officerID string, actor lifecycle.Actor) (*entity.Assignment, error) {
	return &entity.Assignment{CaseID: caseID, OfficerID: officerID}, nil
}

func (s *stubAssignmentService) Unassign(ctx context.Context, caseID string, actor lifecycle.Actor) error {
	return nil
}

func (s *stubAssignmentService) ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error) {
	return nil, nil
}

type stubSubmissionService struct{}

func (s *stubSubmissionService) SubmitToCourt(ctx context.Context, caseID, courtID string, actor lifecycle.Actor) (*entity.CourtSubmission, error) {
	return &entity.CourtSubmission{CaseID: caseID, CourtID: courtID, SubmissionVersion: 1}, nil
}

func (s *stubSubmissionService) Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error) {
	return nil, nil
}

func (s *stubSubmissionService) ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error) {
	return nil, nil
}

func newTestServer(eng engine.Engine) *Server {
	return NewServer(ServerConfig{
		Host:      "127.0.0.1",
		Port:      0,
		JWTSecret: string(testSecret),
	}, eng, &stubCaseService{}, &stubAssignmentService{}, &stubSubmissionService{}, zap.NewNop())
}

func signToken(t *testing.T, subject, role, org string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:           role,
		OrganizationID: org,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

// Tests

func TestHealthCheck_Public(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	w := doRequest(t, srv, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActorMiddleware_MissingToken(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cases/case-1", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorMiddleware_BadSignature(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "JUDGE",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "judge-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cases/case-1", signed, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorMiddleware_ExpiredToken(t *testing.T) {
	srv := newTestServer(&stubEngine{})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "JUDGE",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "judge-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cases/case-1", signed, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActorMiddleware_UnknownRole(t *testing.T) {
	srv := newTestServer(&stubEngine{})
	token := signToken(t, "user-1", "SUPERADMIN", "ORG-1")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cases/case-1", token, "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransition_Success(t *testing.T) {
	var gotActor lifecycle.Actor
	eng := &stubEngine{
		requestFunc: func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
			gotActor = actor
			return &engine.TransitionResult{
				Snapshot: engine.StateSnapshot{CaseID: caseID, CurrentState: target},
			}, nil
		},
	}
	srv := newTestServer(eng)
	token := signToken(t, "sho-mehta", "SHO", "PS-CENTRAL")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/transition", token,
		`{"target_state":"UNDER_INVESTIGATION","reason":"Investigation opened"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sho-mehta", gotActor.ID)
	assert.Equal(t, lifecycle.RoleSHO, gotActor.Role)
	assert.Equal(t, "PS-CENTRAL", gotActor.OrganizationID)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestTransition_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", lifecycle.ErrNotFound, http.StatusNotFound},
		{"forbidden", lifecycle.ErrForbidden, http.StatusForbidden},
		{"invalid state", lifecycle.ErrInvalidState, http.StatusBadRequest},
		{"invalid transition", lifecycle.ErrInvalidTransition, http.StatusConflict},
		{"conflict", lifecycle.ErrConflict, http.StatusConflict},
		{"unavailable", lifecycle.ErrUnavailable, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &stubEngine{
				requestFunc: func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
					return nil, tt.err
				},
			}
			srv := newTestServer(eng)
			token := signToken(t, "judge-1", "JUDGE", "COURT-1")

			w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/transition", token,
				`{"target_state":"ARCHIVED"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTransition_IllegalEdgePayload(t *testing.T) {
	eng := &stubEngine{
		requestFunc: func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
			return nil, &lifecycle.TransitionError{
				Current: lifecycle.StateFIRRegistered,
				Target:  lifecycle.StateArchived,
				Legal:   []lifecycle.State{lifecycle.StateUnderInvestigation, lifecycle.StateReopened},
			}
		},
	}
	srv := newTestServer(eng)
	token := signToken(t, "judge-1", "JUDGE", "COURT-1")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/transition", token,
		`{"target_state":"ARCHIVED"}`)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "FIR_REGISTERED", resp.CurrentState)
	assert.Equal(t, []string{"UNDER_INVESTIGATION", "REOPENED"}, resp.LegalNextStates)
}

func TestClose_Archives(t *testing.T) {
	var gotTarget lifecycle.State
	eng := &stubEngine{
		requestFunc: func(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc engine.TransitionContext) (*engine.TransitionResult, error) {
			gotTarget = target
			return &engine.TransitionResult{
				Snapshot:        engine.StateSnapshot{CaseID: caseID, CurrentState: target},
				ReportRequested: true,
			}, nil
		},
	}
	srv := newTestServer(eng)
	token := signToken(t, "judge-1", "JUDGE", "COURT-1")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/close", token, `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lifecycle.StateArchived, gotTarget)
}

func TestTransition_MissingTargetState(t *testing.T) {
	srv := newTestServer(&stubEngine{})
	token := signToken(t, "sho-1", "SHO", "PS-1")

	w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/transition", token, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransition_ReasonTooLong(t *testing.T) {
	srv := newTestServer(&stubEngine{})
	token := signToken(t, "sho-1", "SHO", "PS-1")

	body := `{"target_state": "UNDER_INVESTIGATION", "reason": "` + strings.Repeat("a", 1001) + `"}`
	w := doRequest(t, srv, http.MethodPost, "/api/v1/cases/case-1/transition", token, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCanTransition_RequiresTarget(t *testing.T) {
	srv := newTestServer(&stubEngine{})
	token := signToken(t, "sho-1", "SHO", "PS-1")

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cases/case-1/can-transition", token, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
