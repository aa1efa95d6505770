package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// errRaceLost signals an intra-engine lost compare-and-swap; never escapes
var errRaceLost = errors.New("state compare-and-swap lost")

const defaultReason = "Case closed by judicial order"

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	graph          *lifecycle.Graph
	caseRepo       port.CaseRepository
	stateRepo      port.StateRepository
	historyRepo    port.HistoryRepository
	assignmentRepo port.AssignmentRepository
	submissionRepo port.SubmissionRepository
	auditRepo      port.AuditRepository
	txManager      port.TransactionManager
	reportGen      port.ClosureReportGenerator
	logger         *zap.Logger

	maxRetries    int
	reportTimeout time.Duration
}

// Option configures the lifecycle engine
type Option func(*engineImpl)

// WithMaxRetries bounds the retry attempts after a lost concurrent race
func WithMaxRetries(n int) Option {
	return func(e *engineImpl) {
		e.maxRetries = n
	}
}

// WithReportTimeout bounds the post-commit closure-report request
func WithReportTimeout(d time.Duration) Option {
	return func(e *engineImpl) {
		e.reportTimeout = d
	}
}

// New creates a new case lifecycle engine
func New(
	graph *lifecycle.Graph,
	caseRepo port.CaseRepository,
	stateRepo port.StateRepository,
	historyRepo port.HistoryRepository,
	assignmentRepo port.AssignmentRepository,
	submissionRepo port.SubmissionRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	reportGen port.ClosureReportGenerator,
	logger *zap.Logger,
	opts ...Option,
) Engine {
	e := &engineImpl{
		graph:          graph,
		caseRepo:       caseRepo,
		stateRepo:      stateRepo,
		historyRepo:    historyRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		reportGen:      reportGen,
		logger:         logger,
		maxRetries:     3,
		reportTimeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// loaded holds everything a precondition check needs, fetched once per case
type loaded struct {
	kase       *entity.Case
	current    lifecycle.State
	submission *entity.CourtSubmission
	assignment *entity.Assignment
}

// load fetches the case and its gate inputs
func (e *engineImpl) load(ctx context.Context, caseID string) (*loaded, error) {
	kase, err := e.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load case: %v", lifecycle.ErrUnavailable, err)
	}
	if kase == nil {
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, caseID)
	}

	state, err := e.stateRepo.Get(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load state: %v", lifecycle.ErrUnavailable, err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: case %s has no state record", lifecycle.ErrUnavailable, caseID)
	}

	submission, err := e.submissionRepo.Latest(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load submission: %v", lifecycle.ErrUnavailable, err)
	}

	assignment, err := e.assignmentRepo.Open(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load assignment: %v", lifecycle.ErrUnavailable, err)
	}

	return &loaded{
		kase:       kase,
		current:    state.CurrentState,
		submission: submission,
		assignment: assignment,
	}, nil
}

// check runs the transition preconditions against loaded case data. It is
// the single predicate shared by CanTransition and RequestTransition.
func (e *engineImpl) check(l *loaded, target lifecycle.State, actor lifecycle.Actor) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown target state %q", lifecycle.ErrInvalidTransition, target)
	}

	if l.kase.IsArchived {
		return fmt.Errorf("%w: case is already closed/archived", lifecycle.ErrInvalidState)
	}

	// Static role gate: may this role ever initiate a transition into target
	if !e.graph.RoleMayTarget(actor.Role, target) {
		return fmt.Errorf("%w: role %s may not move a case to %s", lifecycle.ErrForbidden, actor.Role, target)
	}

	// Cross-organization isolation: a court can only act on cases formally
	// submitted to it
	if e.graph.TargetCourtScoped(target) {
		if l.submission == nil || l.submission.CourtID != actor.OrganizationID {
			return fmt.Errorf("%w: case is not assigned to your court", lifecycle.ErrForbidden)
		}
	}

	rule, ok := e.graph.Rule(l.current, target)
	if !ok {
		return &lifecycle.TransitionError{
			Current: l.current,
			Target:  target,
			Legal:   e.graph.TargetsFrom(l.current),
		}
	}

	if !rule.PermitsRole(actor.Role) {
		return fmt.Errorf("%w: role %s may not move a case from %s to %s",
			lifecycle.ErrForbidden, actor.Role, l.current, target)
	}

	if rule.CourtScoped {
		if l.submission == nil || l.submission.CourtID != actor.OrganizationID {
			return fmt.Errorf("%w: case is not assigned to your court", lifecycle.ErrForbidden)
		}
	}

	if rule.StationScoped {
		if l.kase.PoliceStationID != actor.OrganizationID {
			return fmt.Errorf("%w: case belongs to a different police station", lifecycle.ErrForbidden)
		}
	}

	if rule.RequiresAssignment && actor.Role != lifecycle.RoleSHO {
		if l.assignment == nil || l.assignment.OfficerID != actor.ID {
			return fmt.Errorf("%w: case is not assigned to you", lifecycle.ErrForbidden)
		}
	}

	return nil
}

// RequestTransition validates and atomically applies a state transition
func (e *engineImpl) RequestTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor, tc TransitionContext) (*TransitionResult, error) {
	reason := tc.Reason
	if reason == "" && target == lifecycle.StateArchived {
		reason = defaultReason
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		l, err := e.load(ctx, caseID)
		if err != nil {
			return nil, err
		}

		if err := e.check(l, target, actor); err != nil {
			return nil, err
		}

		now := time.Now()
		err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			swapped, err := e.stateRepo.CompareAndSet(txCtx, caseID, l.current, target)
			if err != nil {
				return fmt.Errorf("%w: update state: %v", lifecycle.ErrUnavailable, err)
			}
			if !swapped {
				return errRaceLost
			}

			if err := e.historyRepo.Append(txCtx, &entity.StateTransition{
				CaseID:       caseID,
				FromState:    l.current,
				ToState:      target,
				ChangedBy:    actor.ID,
				ChangeReason: reason,
				ChangedAt:    now,
			}); err != nil {
				return fmt.Errorf("%w: append history: %v", lifecycle.ErrUnavailable, err)
			}

			if err := e.auditRepo.Append(txCtx, &entity.AuditEntry{
				UserID:   actor.ID,
				Action:   auditAction(target),
				Entity:   "CASE",
				EntityID: caseID,
			}); err != nil {
				return fmt.Errorf("%w: append audit: %v", lifecycle.ErrUnavailable, err)
			}

			if target == lifecycle.StateArchived {
				if err := e.caseRepo.MarkArchived(txCtx, caseID); err != nil {
					return fmt.Errorf("%w: mark archived: %v", lifecycle.ErrUnavailable, err)
				}
			}

			return nil
		})

		if errors.Is(err, errRaceLost) {
			e.logger.Debug("Lost transition race, re-evaluating",
				zap.String("case_id", caseID),
				zap.String("target", target.String()),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		result := &TransitionResult{
			Snapshot: StateSnapshot{
				CaseID:       caseID,
				CurrentState: target,
				UpdatedAt:    now,
			},
		}

		e.logger.Info("Case state transitioned",
			zap.String("case_id", caseID),
			zap.String("from", l.current.String()),
			zap.String("to", target.String()),
			zap.String("actor", actor.ID),
			zap.String("role", actor.Role.String()))

		if target == lifecycle.StateArchived {
			result.ReportRequested = true
			go e.requestClosureReport(caseID, actor.ID)
		}

		return result, nil
	}

	return nil, fmt.Errorf("%w: case %s", lifecycle.ErrConflict, caseID)
}

// CanTransition evaluates preconditions without applying effects
func (e *engineImpl) CanTransition(ctx context.Context, caseID string, target lifecycle.State, actor lifecycle.Actor) (Decision, error) {
	l, err := e.load(ctx, caseID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return Decision{Allowed: false, Reason: "Case not found", Err: err}, nil
		}
		return Decision{}, err
	}

	if err := e.check(l, target, actor); err != nil {
		if errors.Is(err, lifecycle.ErrUnavailable) {
			return Decision{}, err
		}
		return Decision{Allowed: false, Reason: err.Error(), Err: err}, nil
	}

	return Decision{Allowed: true}, nil
}

// NextStates returns the legal next states of a given current state
func (e *engineImpl) NextStates(from lifecycle.State) []lifecycle.State {
	return e.graph.TargetsFrom(from)
}

// PermittedTargets returns the targets this actor could reach on this case
func (e *engineImpl) PermittedTargets(ctx context.Context, caseID string, actor lifecycle.Actor) ([]lifecycle.State, error) {
	l, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var targets []lifecycle.State
	for _, target := range e.graph.TargetsFrom(l.current) {
		if e.check(l, target, actor) == nil {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

// requestClosureReport asks the external generator for a closure report.
// Runs outside the transition's transaction; failure is logged, never
// propagated, and the report stays generable later by the sweep.
func (e *engineImpl) requestClosureReport(caseID, actorID string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.reportTimeout)
	defer cancel()

	url, err := e.reportGen.Generate(ctx, caseID, actorID)
	if err != nil {
		e.logger.Warn("Closure report generation failed, will retry later",
			zap.String("case_id", caseID),
			zap.Error(err))
		return
	}

	if err := e.caseRepo.SetClosureReportURL(ctx, caseID, url); err != nil {
		e.logger.Warn("Failed to record closure report URL",
			zap.String("case_id", caseID),
			zap.Error(err))
		return
	}

	if err := e.auditRepo.Append(ctx, &entity.AuditEntry{
		UserID:   actorID,
		Action:   entity.AuditClosureReportGenerated,
		Entity:   "CASE",
		EntityID: caseID,
	}); err != nil {
		e.logger.Warn("Failed to audit closure report generation",
			zap.String("case_id", caseID),
			zap.Error(err))
	}

	e.logger.Info("Closure report generated",
		zap.String("case_id", caseID),
		zap.String("url", url))
}

// auditAction maps a target state to its transition-specific audit code
func auditAction(target lifecycle.State) string {
	switch target {
	case lifecycle.StateUnderInvestigation:
		return entity.AuditInvestigationStarted
	case lifecycle.StateInvestigationCompleted:
		return entity.AuditInvestigationCompleted
	case lifecycle.StateChargeSheetPrepared:
		return entity.AuditChargeSheetPrepared
	case lifecycle.StateSubmittedToCourt:
		return entity.AuditCaseSubmittedToCourt
	case lifecycle.StateCourtAccepted:
		return entity.AuditCaseAcceptedByCourt
	case lifecycle.StateTrialOngoing:
		return entity.AuditTrialStarted
	case lifecycle.StateJudgmentReserved:
		return entity.AuditJudgmentReserved
	case lifecycle.StateDisposed:
		return entity.AuditCaseDisposed
	case lifecycle.StateReopened:
		return entity.AuditCaseReopened
	case lifecycle.StateArchived:
		return entity.AuditCaseClosedByJudge
	default:
		return "CASE_STATE_CHANGED"
	}
}
