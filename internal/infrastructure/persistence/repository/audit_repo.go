package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/port"
	"github.com/kalp-cg/nyayasankalan/internal/domain/entity"
)

// AuditRepository implements the append-only audit sink over sqlite
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append creates a new audit-log record
func (r *AuditRepository) Append(ctx context.Context, e *entity.AuditEntry) error {
	result, err := pick(ctx, r.db).ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, entity, entity_id)
		VALUES (?, ?, ?, ?)
	`, e.UserID, e.Action, e.Entity, e.EntityID)
	if err != nil {
		r.logger.Error("Failed to append audit entry", zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
