package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
)

type reservationReader interface {
	ListByDate(ctx context.Context, date calendar.Date) ([]models.Reservation, error)
	ListByPeople(ctx context.Context, cpfs []string, date *calendar.Date) ([]models.Reservation, error)
}

type personReader interface {
	FindByCPFs(ctx context.Context, cpfs []string) ([]models.Person, error)
	List(ctx context.Context, filter people.Filter) ([]models.Person, error)
}

type sectorReader interface {
	List(ctx context.Context) ([]models.Sector, error)
	FindByID(ctx context.Context, id int64) (*models.Sector, error)
}

// Service builds attendance reports.
type Service struct {
	reservations reservationReader
	people       personReader
	sectors      sectorReader
}

// NewService builds the report service.
func NewService(reservations reservationReader, peopleRepo personReader, sectorRepo sectorReader) (*Service, error) {
	if reservations == nil {
		return nil, fmt.Errorf("reservation reader required")
	}
	if peopleRepo == nil {
		return nil, fmt.Errorf("people reader required")
	}
	if sectorRepo == nil {
		return nil, fmt.Errorf("sector reader required")
	}
	return &Service{reservations: reservations, people: peopleRepo, sectors: sectorRepo}, nil
}

// Daily joins a day's reservations with their people and sectors, sorted by
// name. Reservations whose person no longer exists are left out.
func (s *Service) Daily(ctx context.Context, date calendar.Date) (*DailyReport, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	entries, _, err := s.entries(ctx, date)
	if err != nil {
		return nil, err
	}
	report := &DailyReport{
		Date:    date,
		Total:   len(entries),
		Present: []Entry{},
		Absent:  []Entry{},
	}
	for _, e := range entries {
		if e.AttendanceConfirmed {
			report.Present = append(report.Present, e)
		} else {
			report.Absent = append(report.Absent, e)
		}
	}
	return report, nil
}

// Summarize counts a day's reservations, including orphans.
func (s *Service) Summarize(ctx context.Context, date calendar.Date) (*Summary, error) {
	entries, orphaned, err := s.entries(ctx, date)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Date: date, Reserved: len(entries), Orphaned: orphaned}
	for _, e := range entries {
		if e.AttendanceConfirmed {
			summary.Present++
		} else {
			summary.Absent++
		}
	}
	return summary, nil
}

// SectorDay lists the sector's soldiers for date with their reservation state.
func (s *Service) SectorDay(ctx context.Context, actor auth.Principal, sectorID int64, date calendar.Date) (*SectorDay, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if !actor.CanManageSector(sectorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sector is outside your scope")
	}
	sector, err := s.sectors.FindByID(ctx, sectorID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "sector not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sector")
	}

	role := enums.RoleMilitar
	members, err := s.people.List(ctx, people.Filter{SectorID: &sectorID, Role: &role})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sector members")
	}
	cpfs := make([]string, 0, len(members))
	for _, m := range members {
		cpfs = append(cpfs, m.CPF)
	}
	rows, err := s.reservations.ListByPeople(ctx, cpfs, &date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	byPerson := make(map[string]models.Reservation, len(rows))
	for _, r := range rows {
		byPerson[r.PersonCPF] = r
	}

	view := &SectorDay{
		SectorID:   sector.ID,
		SectorName: sector.Name,
		Date:       date,
		Members:    make([]MemberDay, 0, len(members)),
	}
	for _, m := range members {
		day := MemberDay{PersonCPF: m.CPF, Name: m.Name, WarName: m.WarName, Rank: m.Rank}
		if r, ok := byPerson[m.CPF]; ok {
			id := r.ID
			day.Reserved = true
			day.ReservationID = &id
			day.AttendanceConfirmed = r.AttendanceConfirmed
			view.ReservedCount++
		}
		view.Members = append(view.Members, day)
	}
	return view, nil
}

func (s *Service) entries(ctx context.Context, date calendar.Date) ([]Entry, int, error) {
	rows, err := s.reservations.ListByDate(ctx, date)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	cpfs := make([]string, 0, len(rows))
	for _, r := range rows {
		cpfs = append(cpfs, r.PersonCPF)
	}
	found, err := s.people.FindByCPFs(ctx, cpfs)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load people")
	}
	byCPF := make(map[string]models.Person, len(found))
	for _, p := range found {
		byCPF[p.CPF] = p
	}
	sectorRows, err := s.sectors.List(ctx)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sectors")
	}
	sectorNames := make(map[int64]string, len(sectorRows))
	for _, sec := range sectorRows {
		sectorNames[sec.ID] = sec.Name
	}

	entries := make([]Entry, 0, len(rows))
	orphaned := 0
	for _, r := range rows {
		person, ok := byCPF[r.PersonCPF]
		if !ok {
			orphaned++
			continue
		}
		entries = append(entries, Entry{
			ReservationID:       r.ID,
			PersonCPF:           person.CPF,
			Name:                person.Name,
			WarName:             person.WarName,
			Rank:                person.Rank,
			SectorID:            person.SectorID,
			SectorName:          sectorNames[person.SectorID],
			AttendanceConfirmed: r.AttendanceConfirmed,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].PersonCPF < entries[j].PersonCPF
	})
	return entries, orphaned, nil
}
