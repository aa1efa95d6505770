package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

// AssignmentRepository implements port.AssignmentRepository over sqlite
type AssignmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sql.DB, logger *zap.Logger) port.AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: logger,
	}
}

// Open returns the case's current assignment; nil when unassigned
func (r *AssignmentRepository) Open(ctx context.Context, caseID string) (*entity.Assignment, error) {
	var a entity.Assignment
	var unassignedAt sql.NullTime

	err := pick(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, case_id, officer_id, assigned_by, assigned_at, unassigned_at
		FROM assignments
		WHERE case_id = ? AND unassigned_at IS NULL
	`, caseID).Scan(&a.ID, &a.CaseID, &a.OfficerID, &a.AssignedBy, &a.AssignedAt, &unassignedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get open assignment", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to get open assignment: %w", err)
	}

	if unassignedAt.Valid {
		a.UnassignedAt = &unassignedAt.Time
	}
	return &a, nil
}

// Create inserts a new assignment record
func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	result, err := pick(ctx, r.db).ExecContext(ctx, `
		INSERT INTO assignments (case_id, officer_id, assigned_by, assigned_at)
		VALUES (?, ?, ?, ?)
	`, a.CaseID, a.OfficerID, a.AssignedBy, a.AssignedAt)
	if err != nil {
		r.logger.Error("Failed to create assignment", zap.Error(err))
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	a.ID = id
	return nil
}

// CloseOpen ends the case's current assignment, if any
func (r *AssignmentRepository) CloseOpen(ctx context.Context, caseID string, at time.Time) error {
	_, err := pick(ctx, r.db).ExecContext(ctx, `
		UPDATE assignments SET unassigned_at = ? WHERE case_id = ? AND unassigned_at IS NULL
	`, at, caseID)
	if err != nil {
		r.logger.Error("Failed to close open assignment", zap.String("case_id", caseID), zap.Error(err))
		return fmt.Errorf("failed to close open assignment: %w", err)
	}
	return nil
}

// ListByCase returns all assignments of a case ordered by AssignedAt
func (r *AssignmentRepository) ListByCase(ctx context.Context, caseID string) ([]*entity.Assignment, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, `
		SELECT id, case_id, officer_id, assigned_by, assigned_at, unassigned_at
		FROM assignments
		WHERE case_id = ?
		ORDER BY assigned_at ASC
	`, caseID)
	if err != nil {
		r.logger.Error("Failed to list assignments", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*entity.Assignment
	for rows.Next() {
		var a entity.Assignment
		var unassignedAt sql.NullTime
		err := rows.Scan(&a.ID, &a.CaseID, &a.OfficerID, &a.AssignedBy, &a.AssignedAt, &unassignedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if unassignedAt.Valid {
			a.UnassignedAt = &unassignedAt.Time
		}
		assignments = append(assignments, &a)
	}

	return assignments, rows.Err()
}

// Verify interface compliance
var _ port.AssignmentRepository = (*AssignmentRepository)(nil)
