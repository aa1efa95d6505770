package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

// SubmissionRepository implements port.SubmissionRepository over sqlite
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Latest returns the case's most recent submission; nil when never submitted
func (r *SubmissionRepository) Latest(ctx context.Context, caseID string) (*entity.CourtSubmission, error) {
	var s entity.CourtSubmission

	err := pick(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, case_id, court_id, submitted_by, submission_version, submitted_at
		FROM court_submissions
		WHERE case_id = ?
		ORDER BY submitted_at DESC, submission_version DESC
		LIMIT 1
	`, caseID).Scan(&s.ID, &s.CaseID, &s.CourtID, &s.SubmittedBy, &s.SubmissionVersion, &s.SubmittedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest submission", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to get latest submission: %w", err)
	}

	return &s, nil
}

// Create inserts a submission, assigning the next monotonic version
func (r *SubmissionRepository) Create(ctx context.Context, s *entity.CourtSubmission) error {
	ex := pick(ctx, r.db)

	var maxVersion sql.NullInt64
	err := ex.QueryRowContext(ctx, `
		SELECT MAX(submission_version) FROM court_submissions WHERE case_id = ?
	`, s.CaseID).Scan(&maxVersion)
	if err != nil {
		r.logger.Error("Failed to read submission version", zap.String("case_id", s.CaseID), zap.Error(err))
		return fmt.Errorf("failed to read submission version: %w", err)
	}

	s.SubmissionVersion = int(maxVersion.Int64) + 1

	result, err := ex.ExecContext(ctx, `
		INSERT INTO court_submissions (case_id, court_id, submitted_by, submission_version, submitted_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.CaseID, s.CourtID, s.SubmittedBy, s.SubmissionVersion, s.SubmittedAt)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	s.ID = id
	return nil
}

// ListByCase returns all submissions of a case ordered by SubmittedAt
func (r *SubmissionRepository) ListByCase(ctx context.Context, caseID string) ([]*entity.CourtSubmission, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx, `
		SELECT id, case_id, court_id, submitted_by, submission_version, submitted_at
		FROM court_submissions
		WHERE case_id = ?
		ORDER BY submitted_at ASC, submission_version ASC
	`, caseID)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*entity.CourtSubmission
	for rows.Next() {
		var s entity.CourtSubmission
		err := rows.Scan(&s.ID, &s.CaseID, &s.CourtID, &s.SubmittedBy, &s.SubmissionVersion, &s.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, &s)
	}

	return submissions, rows.Err()
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
