package reservations

import (
	"time"

	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ReservationDTO is the transport shape of a reservation.
type ReservationDTO struct {
	ID                  uuid.UUID     `json:"id"`
	PersonCPF           string        `json:"person_cpf"`
	MealDate            calendar.Date `json:"meal_date"`
	AttendanceConfirmed bool          `json:"attendance_confirmed"`
	CreatedAt           time.Time     `json:"created_at"`
}

// ToggleResult reports the state of a (person, date) pair after a toggle.
type ToggleResult struct {
	PersonCPF   string          `json:"person_cpf"`
	MealDate    calendar.Date   `json:"meal_date"`
	Reserved    bool            `json:"reserved"`
	Reservation *ReservationDTO `json:"reservation,omitempty"`
}

// Query selects reservations by person, sector or date. Person wins over sector.
type Query struct {
	PersonCPF string
	SectorID  *int64
	Date      *calendar.Date
}

// SpecialInput books anonymous guest meals.
type SpecialInput struct {
	Date     calendar.Date
	Name     string
	Quantity int
}

// FromModel maps a reservation row onto its DTO.
func FromModel(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:                  r.ID,
		PersonCPF:           r.PersonCPF,
		MealDate:            r.MealDate,
		AttendanceConfirmed: r.AttendanceConfirmed,
		CreatedAt:           r.CreatedAt,
	}
}

// FromModels maps rows in order.
func FromModels(rows []models.Reservation) []ReservationDTO {
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// Dates returns the meal dates of rows in order.
func Dates(rows []ReservationDTO) []calendar.Date {
	out := make([]calendar.Date, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.MealDate)
	}
	return out
}
