package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

// CaseRepository implements port.CaseRepository over sqlite
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the case together with its originating FIR
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case, fir *entity.FIR) error {
	ex := pick(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		INSERT INTO firs (id, fir_number, police_station_id, incident_date, sections_applied, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fir.ID, fir.FIRNumber, fir.PoliceStationID, fir.IncidentDate, fir.SectionsApplied, fir.Description)
	if err != nil {
		r.logger.Error("Failed to create FIR", zap.Error(err))
		return fmt.Errorf("failed to create FIR: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO cases (id, fir_id, police_station_id, is_archived)
		VALUES (?, ?, ?, 0)
	`, c.ID, c.FIRID, c.PoliceStationID)
	if err != nil {
		r.logger.Error("Failed to create case", zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

const caseColumns = `id, fir_id, police_station_id, is_archived, closure_report_url, created_at, updated_at`

func scanCase(row interface{ Scan(...interface{}) error }) (*entity.Case, error) {
	var c entity.Case
	var reportURL sql.NullString
	err := row.Scan(
		&c.ID,
		&c.FIRID,
		&c.PoliceStationID,
		&c.IsArchived,
		&reportURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reportURL.Valid {
		c.ClosureReportURL = &reportURL.String
	}
	return &c, nil
}

// GetByID retrieves a case by ID; returns nil when absent
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	row := pick(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

// MarkArchived sets the archival flag on a case
func (r *CaseRepository) MarkArchived(ctx context.Context, id string) error {
	_, err := pick(ctx, r.db).ExecContext(ctx,
		`UPDATE cases SET is_archived = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark case archived", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark case archived: %w", err)
	}
	return nil
}

// SetClosureReportURL records the URL of a generated closure report
func (r *CaseRepository) SetClosureReportURL(ctx context.Context, id string, url string) error {
	_, err := pick(ctx, r.db).ExecContext(ctx,
		`UPDATE cases SET closure_report_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, url, id)
	if err != nil {
		r.logger.Error("Failed to set closure report URL", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set closure report URL: %w", err)
	}
	return nil
}

// ListArchivedWithoutReport returns archived cases without a closure report
func (r *CaseRepository) ListArchivedWithoutReport(ctx context.Context, limit int) ([]*entity.Case, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		 WHERE is_archived = 1 AND closure_report_url IS NULL
		 ORDER BY updated_at ASC
		 LIMIT ?`, limit)
	if err != nil {
		r.logger.Error("Failed to list archived cases without report", zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	return collectCases(rows)
}

// List retrieves cases with pagination
func (r *CaseRepository) List(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	rows, err := pick(ctx, r.db).QueryContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list cases", zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	return collectCases(rows)
}

func collectCases(rows *sql.Rows) ([]*entity.Case, error) {
	var cases []*entity.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// Verify interface compliance
var _ port.CaseRepository = (*CaseRepository)(nil)
