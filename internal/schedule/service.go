package schedule

import (
	"context"
	"fmt"

	"github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/db/models"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
)

// DayView is one selectable date of a window.
type DayView struct {
	Date     calendar.Date `json:"date"`
	Weekday  string        `json:"weekday"`
	Reserved bool          `json:"reserved"`
}

// WindowView lists the dates a policy allows on a given day.
type WindowView struct {
	Policy calendar.Policy `json:"policy"`
	Today  calendar.Date   `json:"today"`
	Days   []DayView       `json:"days"`
}

// OwnWindow is the self-service screen: the selectable days plus any held
// reservations that fall outside them.
type OwnWindow struct {
	WindowView
	Outside []calendar.Date `json:"outside_window"`
}

type reservationLister interface {
	ListByPerson(ctx context.Context, cpf string) ([]models.Reservation, error)
}

// Service computes eligibility windows.
type Service struct {
	reservations reservationLister
	clock        calendar.Clock
	policies     calendar.Policies
}

// NewService builds the window service.
func NewService(reservations reservationLister, clock calendar.Clock, policies calendar.Policies) (*Service, error) {
	if reservations == nil {
		return nil, fmt.Errorf("reservation lister required")
	}
	return &Service{reservations: reservations, clock: clock, policies: policies}, nil
}

// Today reports the current calendar day in the configured location.
func (s *Service) Today() calendar.Date {
	return s.clock.Today()
}

// Policy returns the dates of a named policy for today.
func (s *Service) Policy(name string) (*WindowView, error) {
	policy, err := s.policies.Lookup(name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown window policy")
	}
	today := s.clock.Today()
	return &WindowView{Policy: policy, Today: today, Days: days(policy.Dates(today), nil)}, nil
}

// Own returns the self-service window of actor with its reservations marked.
func (s *Service) Own(ctx context.Context, actor auth.Principal) (*OwnWindow, error) {
	if actor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.reservations.ListByPerson(ctx, actor.CPF)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	held := make(map[calendar.Date]bool, len(rows))
	for _, r := range rows {
		held[r.MealDate] = true
	}

	today := s.clock.Today()
	policy := s.policies.Self
	dates := policy.Dates(today)
	view := &OwnWindow{
		WindowView: WindowView{Policy: policy, Today: today, Days: days(dates, held)},
		Outside:    []calendar.Date{},
	}
	inWindow := make(map[calendar.Date]bool, len(dates))
	for _, d := range dates {
		inWindow[d] = true
	}
	for _, r := range rows {
		if !inWindow[r.MealDate] && !r.MealDate.Before(today) {
			view.Outside = append(view.Outside, r.MealDate)
		}
	}
	return view, nil
}

func days(dates []calendar.Date, held map[calendar.Date]bool) []DayView {
	out := make([]DayView, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayView{Date: d, Weekday: d.Weekday().String(), Reserved: held[d]})
	}
	return out
}
