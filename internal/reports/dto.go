package reports

import (
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/google/uuid"
)

// Entry is one reservation row on a daily report.
type Entry struct {
	ReservationID       uuid.UUID `json:"reservation_id"`
	PersonCPF           string    `json:"person_cpf"`
	Name                string    `json:"name"`
	WarName             string    `json:"war_name"`
	Rank                string    `json:"rank"`
	SectorID            int64     `json:"sector_id"`
	SectorName          string    `json:"sector_name"`
	AttendanceConfirmed bool      `json:"attendance_confirmed"`
}

// DailyReport partitions a day's reservations on the attendance flag.
type DailyReport struct {
	Date    calendar.Date `json:"date"`
	Total   int           `json:"total"`
	Present []Entry       `json:"present"`
	Absent  []Entry       `json:"absent"`
}

// MemberDay is one sector member on the supervisor day view.
type MemberDay struct {
	PersonCPF           string     `json:"person_cpf"`
	Name                string     `json:"name"`
	WarName             string     `json:"war_name"`
	Rank                string     `json:"rank"`
	Reserved            bool       `json:"reserved"`
	ReservationID       *uuid.UUID `json:"reservation_id,omitempty"`
	AttendanceConfirmed bool       `json:"attendance_confirmed"`
}

// SectorDay lists a sector's soldiers for one date.
type SectorDay struct {
	SectorID      int64         `json:"sector_id"`
	SectorName    string        `json:"sector_name"`
	Date          calendar.Date `json:"date"`
	ReservedCount int           `json:"reserved_count"`
	Members       []MemberDay   `json:"members"`
}

// Summary holds the headline counts of a day.
type Summary struct {
	Date     calendar.Date `json:"date"`
	Reserved int           `json:"reserved"`
	Present  int           `json:"present"`
	Absent   int           `json:"absent"`
	Orphaned int           `json:"orphaned"`
}
