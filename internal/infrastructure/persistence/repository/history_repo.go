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

// HistoryRepository implements port.HistoryRepository over sqlite
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append creates a new state transition record
func (r *HistoryRepository) Append(ctx context.Context, t *entity.StateTransition) error {
	result, err := pick(ctx, r.db).ExecContext(ctx, `
		INSERT INTO case_state_history (case_id, from_state, to_state, changed_by, change_reason)
		VALUES (?, ?, ?, ?, ?)
	`,
		t.CaseID,
		t.FromState.String(),
		t.ToState.String(),
		t.ChangedBy,
		t.ChangeReason,
	)
	if err != nil {
		r.logger.Error("Failed to append state history", zap.Error(err))
		return fmt.Errorf("failed to append state history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	t.ID = id
	return nil
}

// ListByCase retrieves all transition records of a case in order
func (r *HistoryRepository) ListByCase(ctx context.Context, caseID string) ([]*entity.StateTransition, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, `
		SELECT id, case_id, from_state, to_state, changed_by, change_reason, changed_at
		FROM case_state_history
		WHERE case_id = ?
		ORDER BY changed_at ASC, id ASC
	`, caseID)
	if err != nil {
		r.logger.Error("Failed to list state history", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list state history: %w", err)
	}
	defer rows.Close()

	var records []*entity.StateTransition
	for rows.Next() {
		var record entity.StateTransition
		var from, to string
		err := rows.Scan(
			&record.ID,
			&record.CaseID,
			&from,
			&to,
			&record.ChangedBy,
			&record.ChangeReason,
			&record.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state history record: %w", err)
		}
		record.FromState = lifecycle.State(from)
		record.ToState = lifecycle.State(to)
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
