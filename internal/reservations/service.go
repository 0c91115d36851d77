package reservations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MaxSpecialQuantity caps one guest booking.
	MaxSpecialQuantity = 200

	specialCPFPrefix = "especial_"
	specialWarName   = "Especial"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

type changeRecorder interface {
	AddReservationChanges(operation string, created, deleted int)
}

// Service exposes the reservation use cases.
type Service interface {
	ReplaceOwn(ctx context.Context, actor auth.Principal, dates []calendar.Date) ([]ReservationDTO, error)
	Replace(ctx context.Context, actor auth.Principal, personCPF string, dates []calendar.Date) ([]ReservationDTO, error)
	Toggle(ctx context.Context, actor auth.Principal, personCPF string, date calendar.Date) (*ToggleResult, error)
	MarkAttendance(ctx context.Context, actor auth.Principal, id uuid.UUID, confirmed bool) (*ReservationDTO, error)
	CancelOwn(ctx context.Context, actor auth.Principal, date calendar.Date) error
	AddSpecial(ctx context.Context, actor auth.Principal, input SpecialInput) ([]ReservationDTO, error)
	ListForPerson(ctx context.Context, actor auth.Principal, personCPF string) ([]ReservationDTO, error)
	List(ctx context.Context, actor auth.Principal, query Query) ([]ReservationDTO, error)
	SweepOrphans(ctx context.Context) (int64, error)
}

// ServiceParams wires the reservation service.
type ServiceParams struct {
	Repo               Repository
	People             people.Repository
	Tx                 txRunner
	Audit              auditRecorder
	Clock              calendar.Clock
	Policies           calendar.Policies
	PreserveAttendance bool
	Metrics            changeRecorder
	Logger             *logger.Logger
}

type service struct {
	repo               Repository
	people             people.Repository
	tx                 txRunner
	audit              auditRecorder
	clock              calendar.Clock
	policies           calendar.Policies
	preserveAttendance bool
	metrics            changeRecorder
	logg               *logger.Logger
}

// NewService builds the reservation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if params.People == nil {
		return nil, fmt.Errorf("people repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Discard()
	}
	return &service{
		repo:               params.Repo,
		people:             params.People,
		tx:                 params.Tx,
		audit:              params.Audit,
		clock:              params.Clock,
		policies:           params.Policies,
		preserveAttendance: params.PreserveAttendance,
		metrics:            params.Metrics,
		logg:               logg,
	}, nil
}

// ReplaceOwn reconciles the actor's own schedule. Dates the actor did not
// already hold must sit inside the self-service window; removals are free.
func (s *service) ReplaceOwn(ctx context.Context, actor auth.Principal, dates []calendar.Date) ([]ReservationDTO, error) {
	if actor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	today := s.clock.Today()
	return s.reconcile(ctx, actor, actor.CPF, dates, func(held map[calendar.Date]models.Reservation, wanted []calendar.Date) error {
		var outside []string
		for _, d := range wanted {
			if _, ok := held[d]; ok {
				continue
			}
			if !s.policies.Self.Contains(today, d) {
				outside = append(outside, d.String())
			}
		}
		if len(outside) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "dates outside the reservation window").
				WithDetails(map[string]any{
					"dates":        outside,
					"window_start": today.AddDays(s.policies.Self.Offset).String(),
					"window_end":   today.AddDays(s.policies.Self.Offset + s.policies.Self.Count - 1).String(),
				})
		}
		return nil
	})
}

// Replace reconciles another person's schedule on behalf of a supervisor or admin.
func (s *service) Replace(ctx context.Context, actor auth.Principal, personCPF string, dates []calendar.Date) ([]ReservationDTO, error) {
	return s.reconcile(ctx, actor, personCPF, dates, nil)
}

type reconcileCheck func(held map[calendar.Date]models.Reservation, wanted []calendar.Date) error

func (s *service) reconcile(ctx context.Context, actor auth.Principal, personCPF string, dates []calendar.Date, check reconcileCheck) ([]ReservationDTO, error) {
	wanted, err := normalizeDates(dates)
	if err != nil {
		return nil, err
	}

	var (
		result  []models.Reservation
		deleted int64
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		person, err := s.people.WithTx(tx).FindByCPF(ctx, personCPF)
		if err != nil {
			return personLookupError(err)
		}
		if person.CPF != actor.CPF && !actor.CanManageSector(person.SectorID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "person is outside your sector")
		}

		repo := s.repo.WithTx(tx)
		existing, err := repo.ListByPerson(ctx, person.CPF)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations")
		}
		held := make(map[calendar.Date]models.Reservation, len(existing))
		for _, r := range existing {
			held[r.MealDate] = r
		}
		if check != nil {
			if err := check(held, wanted); err != nil {
				return err
			}
		}

		deleted, err = repo.DeleteByPerson(ctx, person.CPF)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservations")
		}
		rows := make([]models.Reservation, 0, len(wanted))
		for _, d := range wanted {
			row := models.Reservation{PersonCPF: person.CPF, MealDate: d}
			if prev, ok := held[d]; ok && s.preserveAttendance {
				row.AttendanceConfirmed = prev.AttendanceConfirmed
			}
			rows = append(rows, row)
		}
		if err := repo.CreateMany(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert reservations")
		}
		result = rows

		added, removed := diffDates(held, wanted)
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventReservationsReplaced,
			AggregateType: enums.AggregateReservation,
			AggregateID:   person.CPF,
			ActorCPF:      actor.CPF,
			Data: map[string]any{
				"dates":   datesToStrings(wanted),
				"added":   added,
				"removed": removed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddReservationChanges("replace", len(result), int(deleted))
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"person_cpf": personCPF,
		"dates":      len(result),
		"deleted":    deleted,
	})
	s.logg.Info(logCtx, "reservations.replaced")
	return FromModels(result), nil
}

// Toggle deletes the (person, date) reservation when present and creates it otherwise.
func (s *service) Toggle(ctx context.Context, actor auth.Principal, personCPF string, date calendar.Date) (*ToggleResult, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	result := &ToggleResult{PersonCPF: personCPF, MealDate: date}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		person, err := s.people.WithTx(tx).FindByCPF(ctx, personCPF)
		if err != nil {
			return personLookupError(err)
		}
		if !actor.CanManageSector(person.SectorID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "person is outside your sector")
		}

		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, person.CPF, date)
		switch {
		case err == nil:
			if _, err := repo.Delete(ctx, existing.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservation")
			}
			result.Reserved = false
		case db.IsNotFound(err):
			row := &models.Reservation{PersonCPF: person.CPF, MealDate: date}
			if err := repo.Create(ctx, row); err != nil {
				if db.IsUniqueViolation(err, PersonDateIndex, PersonDateColumns) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "reservation changed concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
			}
			result.Reserved = true
			result.Reservation = FromModel(row)
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventReservationToggled,
			AggregateType: enums.AggregateReservation,
			AggregateID:   person.CPF,
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"date": date.String(), "reserved": result.Reserved},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if result.Reserved {
			s.metrics.AddReservationChanges("toggle", 1, 0)
		} else {
			s.metrics.AddReservationChanges("toggle", 0, 1)
		}
	}
	return result, nil
}

// MarkAttendance sets the attendance flag on an existing reservation.
func (s *service) MarkAttendance(ctx context.Context, actor auth.Principal, id uuid.UUID, confirmed bool) (*ReservationDTO, error) {
	if !actor.IsAdmin() && actor.Role != enums.RoleFiscSU {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}

	var updated *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}
		if err := repo.SetAttendance(ctx, id, confirmed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update attendance")
		}
		row.AttendanceConfirmed = confirmed
		updated = row
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventAttendanceMarked,
			AggregateType: enums.AggregateReservation,
			AggregateID:   id.String(),
			ActorCPF:      actor.CPF,
			Data: map[string]any{
				"person_cpf": row.PersonCPF,
				"date":       row.MealDate.String(),
				"confirmed":  confirmed,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// CancelOwn removes one of the actor's reservations for today or later.
func (s *service) CancelOwn(ctx context.Context, actor auth.Principal, date calendar.Date) error {
	if actor.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if date.Before(s.clock.Today()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "past reservations cannot be canceled")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.Find(ctx, actor.CPF, date)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}
		if _, err := repo.Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservation")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventReservationCanceled,
			AggregateType: enums.AggregateReservation,
			AggregateID:   actor.CPF,
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"date": date.String()},
		})
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.AddReservationChanges("cancel", 0, 1)
	}
	return nil
}

// AddSpecial creates quantity guest people and one reservation each.
func (s *service) AddSpecial(ctx context.Context, actor auth.Principal, input SpecialInput) ([]ReservationDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}
	name := strings.TrimSpace(input.Name)
	switch {
	case input.Date.IsZero():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case input.Quantity <= 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	case input.Quantity > MaxSpecialQuantity:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must not exceed %d", MaxSpecialQuantity)
	}

	rows := make([]models.Reservation, 0, input.Quantity)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		peopleRepo := s.people.WithTx(tx)
		for i := 1; i <= input.Quantity; i++ {
			pin, err := security.GenerateTempPassword(16)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate guest pin")
			}
			guestName := name
			if input.Quantity > 1 {
				guestName = fmt.Sprintf("%s (%d/%d)", name, i, input.Quantity)
			}
			guest := &models.Person{
				CPF:      specialCPFPrefix + uuid.NewString(),
				Name:     guestName,
				WarName:  specialWarName,
				Rank:     guestName,
				SectorID: models.UnassignedSectorID,
				Role:     enums.RoleMilitar,
				Status:   enums.AccountStatusApproved,
				Pin:      pin,
			}
			if err := peopleRepo.Create(ctx, guest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create guest")
			}
			rows = append(rows, models.Reservation{PersonCPF: guest.CPF, MealDate: input.Date})
		}
		if err := s.repo.WithTx(tx).CreateMany(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert guest reservations")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventSpecialBooked,
			AggregateType: enums.AggregateReservation,
			AggregateID:   input.Date.String(),
			ActorCPF:      actor.CPF,
			Data:          map[string]any{"name": name, "quantity": input.Quantity},
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AddReservationChanges("special", len(rows), 0)
	}
	return FromModels(rows), nil
}

// ListForPerson returns a person's reservations ordered by date. People may
// always read their own.
func (s *service) ListForPerson(ctx context.Context, actor auth.Principal, personCPF string) ([]ReservationDTO, error) {
	if personCPF != actor.CPF {
		person, err := s.people.FindByCPF(ctx, personCPF)
		switch {
		case err == nil:
			if !actor.CanManageSector(person.SectorID) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "person is outside your sector")
			}
		case db.IsNotFound(err) && actor.IsAdmin():
			// orphaned reservations remain visible to admins
		default:
			return nil, personLookupError(err)
		}
	}
	rows, err := s.repo.ListByPerson(ctx, personCPF)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return FromModels(rows), nil
}

// List resolves query for the actor. Supervisors only see their own sector.
func (s *service) List(ctx context.Context, actor auth.Principal, query Query) ([]ReservationDTO, error) {
	if query.PersonCPF != "" {
		rows, err := s.ListForPerson(ctx, actor, query.PersonCPF)
		if err != nil || query.Date == nil {
			return rows, err
		}
		out := rows[:0]
		for _, r := range rows {
			if r.MealDate == *query.Date {
				out = append(out, r)
			}
		}
		return out, nil
	}

	if !actor.IsAdmin() {
		if actor.Role != enums.RoleFiscSU {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
		}
		if query.SectorID == nil {
			own := actor.SectorID
			query.SectorID = &own
		}
	}

	if query.SectorID != nil {
		if !actor.CanManageSector(*query.SectorID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sector is outside your scope")
		}
		members, err := s.people.List(ctx, people.Filter{SectorID: query.SectorID})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sector members")
		}
		cpfs := make([]string, 0, len(members))
		for _, m := range members {
			cpfs = append(cpfs, m.CPF)
		}
		rows, err := s.repo.ListByPeople(ctx, cpfs, query.Date)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
		}
		return FromModels(rows), nil
	}

	var (
		rows []models.Reservation
		err  error
	)
	if query.Date != nil {
		rows, err = s.repo.ListByDate(ctx, *query.Date)
	} else {
		rows, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return FromModels(rows), nil
}

// SweepOrphans deletes reservations left behind by denied or removed people.
func (s *service) SweepOrphans(ctx context.Context) (int64, error) {
	var removed int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = s.repo.WithTx(tx).DeleteOrphans(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete orphaned reservations")
		}
		if removed == 0 {
			return nil
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			Type:          enums.EventOrphansSwept,
			AggregateType: enums.AggregateReservation,
			AggregateID:   "orphans",
			Data:          map[string]any{"removed": removed},
		})
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.AddReservationChanges("sweep", 0, int(removed))
	}
	return removed, nil
}

func normalizeDates(dates []calendar.Date) ([]calendar.Date, error) {
	seen := make(map[calendar.Date]struct{}, len(dates))
	out := make([]calendar.Date, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "dates must not be empty")
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func diffDates(held map[calendar.Date]models.Reservation, wanted []calendar.Date) (added, removed []string) {
	want := make(map[calendar.Date]struct{}, len(wanted))
	for _, d := range wanted {
		want[d] = struct{}{}
		if _, ok := held[d]; !ok {
			added = append(added, d.String())
		}
	}
	for d := range held {
		if _, ok := want[d]; !ok {
			removed = append(removed, d.String())
		}
	}
	sort.Strings(removed)
	return added, removed
}

func datesToStrings(dates []calendar.Date) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return out
}

func personLookupError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "person not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
}
