package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/erancho/erancho-backend/pkg/db/models"
	dbtypes "github.com/erancho/erancho-backend/pkg/db/types"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry describes one change to record.
type Entry struct {
	Type          enums.AuditEventType
	AggregateType enums.AuditAggregateType
	AggregateID   string
	ActorCPF      string
	Data          any
}

// EventDTO is the transport shape of a stored audit event.
type EventDTO struct {
	ID            uuid.UUID                `json:"id"`
	EventType     enums.AuditEventType     `json:"event_type"`
	AggregateType enums.AuditAggregateType `json:"aggregate_type"`
	AggregateID   string                   `json:"aggregate_id"`
	ActorCPF      *string                  `json:"actor_cpf,omitempty"`
	Payload       json.RawMessage          `json:"payload"`
	CreatedAt     time.Time                `json:"created_at"`
}

// ListParams selects one page of events. An empty AggregateID lists everything.
type ListParams struct {
	AggregateID string
	Limit       int
	Cursor      string
}

// Page is one slice of the log; Cursor is empty on the last page.
type Page struct {
	Events []EventDTO `json:"events"`
	Cursor string     `json:"cursor,omitempty"`
}

// Service writes and reads the audit log.
type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the audit service. logg may be nil.
func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Record appends entry inside tx so the event commits or rolls back with the
// change it describes.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !entry.Type.IsValid() {
		return errors.New("invalid audit event type")
	}
	if !entry.AggregateType.IsValid() {
		return errors.New("invalid audit aggregate type")
	}
	payload, err := dbtypes.MarshalJSONValue(entry.Data)
	if err != nil {
		return err
	}
	row := models.AuditEvent{
		ID:            uuid.New(),
		EventType:     entry.Type,
		AggregateType: entry.AggregateType,
		AggregateID:   entry.AggregateID,
		Payload:       payload,
		CreatedAt:     s.now().UTC(),
	}
	if entry.ActorCPF != "" {
		actor := entry.ActorCPF
		row.ActorCPF = &actor
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"audit_id":       row.ID.String(),
			"event_type":     entry.Type,
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
		})
		s.logg.Info(logCtx, "audit event recorded")
	}
	return nil
}

// List returns one page of events, newest first.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	query := listParams{AggregateID: params.AggregateID, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit events")
	}

	page := &Page{Events: make([]EventDTO, 0, len(rows))}
	for _, row := range rows {
		page.Events = append(page.Events, EventDTO{
			ID:            row.ID,
			EventType:     row.EventType,
			AggregateType: row.AggregateType,
			AggregateID:   row.AggregateID,
			ActorCPF:      row.ActorCPF,
			Payload:       json.RawMessage(row.Payload),
			CreatedAt:     row.CreatedAt,
		})
	}
	if next != nil {
		page.Cursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}
