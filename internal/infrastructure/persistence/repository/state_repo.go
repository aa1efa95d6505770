package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
)

// StateRepository implements port.StateRepository over sqlite
type StateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *sql.DB, logger *zap.Logger) port.StateRepository {
	return &StateRepository{
		db:     db,
		logger: logger,
	}
}

// Init creates the current-state record at case creation
func (r *StateRepository) Init(ctx context.Context, caseID string, s lifecycle.State) error {
	_, err := pick(ctx, r.db).ExecContext(ctx, `
		INSERT INTO case_states (case_id, current_state) VALUES (?, ?)
	`, caseID, s.String())
	if err != nil {
		r.logger.Error("Failed to init case state", zap.String("case_id", caseID), zap.Error(err))
		return fmt.Errorf("failed to init case state: %w", err)
	}
	return nil
}

// Get retrieves the current state of a case; returns nil when absent
func (r *StateRepository) Get(ctx context.Context, caseID string) (*entity.CaseState, error) {
	var state entity.CaseState
	var current string

	err := pick(ctx, r.db).QueryRowContext(ctx, `
		SELECT case_id, current_state, updated_at FROM case_states WHERE case_id = ?
	`, caseID).Scan(&state.CaseID, &current, &state.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case state", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to get case state: %w", err)
	}

	state.CurrentState = lifecycle.State(current)
	return &state, nil
}

// CompareAndSet advances the state only if it still equals from. The WHERE
// clause on current_state makes concurrent losers observe zero affected
// rows instead of clobbering the winner.
func (r *StateRepository) CompareAndSet(ctx context.Context, caseID string, from, to lifecycle.State) (bool, error) {
	result, err := pick(ctx, r.db).ExecContext(ctx, `
		UPDATE case_states
		SET current_state = ?, updated_at = CURRENT_TIMESTAMP
		WHERE case_id = ? AND current_state = ?
	`, to.String(), caseID, from.String())
	if err != nil {
		r.logger.Error("Failed to update case state",
			zap.String("case_id", caseID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to update case state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// Verify interface compliance
var _ port.StateRepository = (*StateRepository)(nil)
