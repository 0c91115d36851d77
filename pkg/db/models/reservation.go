package models

import (
	"time"

	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/google/uuid"
)

// Reservation books one lunch for a person on a date.
type Reservation struct {
	ID                  uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	PersonCPF           string        `gorm:"column:person_cpf;not null"`
	MealDate            calendar.Date `gorm:"column:meal_date;not null"`
	AttendanceConfirmed bool          `gorm:"column:attendance_confirmed;not null"`
	CreatedAt           time.Time     `gorm:"column:created_at;autoCreateTime"`
}

func (Reservation) TableName() string { return "reservations" }
