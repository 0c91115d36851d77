package audit

import (
	"context"
	"errors"

	"github.com/erancho/erancho-backend/internal/repo"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists audit events.
type Repository struct {
	repo.Base
}

// NewRepository binds the audit log to a GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Insert appends an event using the caller's transaction.
func (r *Repository) Insert(tx *gorm.DB, event models.AuditEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

type listParams struct {
	AggregateID string
	Limit       int
	Cursor      *pagination.Cursor
}

// List returns the newest events first for an aggregate id, or across every
// aggregate when AggregateID is empty. The cursor is set when more rows follow.
func (r *Repository) List(ctx context.Context, params listParams) ([]models.AuditEvent, *pagination.Cursor, error) {
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.DB(ctx).Model(&models.AuditEvent{})
	if params.AggregateID != "" {
		query = query.Where("aggregate_id = ?", params.AggregateID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.AuditEvent
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
