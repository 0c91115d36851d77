package models

import (
	"time"

	dbtypes "github.com/erancho/erancho-backend/pkg/db/types"
	"github.com/erancho/erancho-backend/pkg/enums"
	"github.com/google/uuid"
)

// AuditEvent is an append-only record of a change, written in the same
// transaction as the change itself.
type AuditEvent struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	EventType     enums.AuditEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.AuditAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   string                   `gorm:"column:aggregate_id;not null"`
	ActorCPF      *string                  `gorm:"column:actor_cpf"`
	Payload       dbtypes.JSON             `gorm:"column:payload;not null"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (AuditEvent) TableName() string { return "audit_events" }
