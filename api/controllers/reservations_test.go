package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/internal/reservations"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/enums"
	"github.com/erancho/erancho-backend/pkg/logger"
)

// stubReservations implements only what the handlers under test call.
type stubReservations struct {
	reservations.Service

	toggledCPF  string
	toggledDate calendar.Date
	attendance  *bool
	special     reservations.SpecialInput
	cancelled   calendar.Date
	actor       pkgAuth.Principal
}

func (s *stubReservations) Toggle(ctx context.Context, actor pkgAuth.Principal, personCPF string, date calendar.Date) (*reservations.ToggleResult, error) {
	s.actor, s.toggledCPF, s.toggledDate = actor, personCPF, date
	return &reservations.ToggleResult{PersonCPF: personCPF, MealDate: date, Reserved: true}, nil
}

func (s *stubReservations) MarkAttendance(ctx context.Context, actor pkgAuth.Principal, id uuid.UUID, confirmed bool) (*reservations.ReservationDTO, error) {
	s.attendance = &confirmed
	return &reservations.ReservationDTO{ID: id, AttendanceConfirmed: confirmed}, nil
}

func (s *stubReservations) AddSpecial(ctx context.Context, actor pkgAuth.Principal, input reservations.SpecialInput) ([]reservations.ReservationDTO, error) {
	s.special = input
	return make([]reservations.ReservationDTO, input.Quantity), nil
}

func (s *stubReservations) CancelOwn(ctx context.Context, actor pkgAuth.Principal, date calendar.Date) error {
	s.cancelled = date
	return nil
}

func serveWithPrincipal(handler http.Handler, method, pattern, target, body string, principal pkgAuth.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, handler)
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

var supervisor = pkgAuth.Principal{CPF: "222", Role: enums.RoleFiscSU, SectorID: 1}

func TestReservationsToggleForwardsActorAndDate(t *testing.T) {
	svc := &stubReservations{}
	resp := serveWithPrincipal(ReservationsToggle(svc, logger.Discard()), http.MethodPatch, "/toggle", "/toggle",
		`{"person_id":" 333 ","date":"2024-01-15"}`, supervisor)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.toggledCPF != "333" || svc.toggledDate != calendar.MustParse("2024-01-15") {
		t.Fatalf("unexpected toggle args %q %q", svc.toggledCPF, svc.toggledDate)
	}
	if svc.actor != supervisor {
		t.Fatalf("principal not forwarded: %+v", svc.actor)
	}
}

func TestReservationsToggleRejectsBadDate(t *testing.T) {
	resp := serveWithPrincipal(ReservationsToggle(&stubReservations{}, logger.Discard()), http.MethodPatch, "/toggle", "/toggle",
		`{"person_id":"333","date":"15/01/2024"}`, supervisor)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReservationsMarkAttendance(t *testing.T) {
	svc := &stubReservations{}
	id := uuid.New()
	resp := serveWithPrincipal(ReservationsMarkAttendance(svc, logger.Discard()), http.MethodPatch, "/reservations/{id}",
		"/reservations/"+id.String(), `{"attendance_confirmed":false}`, supervisor)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.attendance == nil || *svc.attendance {
		t.Fatalf("expected explicit false to be forwarded, got %v", svc.attendance)
	}
}

func TestReservationsMarkAttendanceRequiresFlag(t *testing.T) {
	resp := serveWithPrincipal(ReservationsMarkAttendance(&stubReservations{}, logger.Discard()), http.MethodPatch, "/reservations/{id}",
		"/reservations/"+uuid.NewString(), `{}`, supervisor)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReservationsMarkAttendanceRejectsBadID(t *testing.T) {
	resp := serveWithPrincipal(ReservationsMarkAttendance(&stubReservations{}, logger.Discard()), http.MethodPatch, "/reservations/{id}",
		"/reservations/not-a-uuid", `{"attendance_confirmed":true}`, supervisor)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReservationsAddSpecialBounds(t *testing.T) {
	admin := pkgAuth.Principal{CPF: "111", Role: enums.RoleAdmGeral}
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"date":"2024-01-15","name":"Visita","quantity":3}`, http.StatusCreated},
		{"zero", `{"date":"2024-01-15","name":"Visita","quantity":0}`, http.StatusBadRequest},
		{"too many", `{"date":"2024-01-15","name":"Visita","quantity":201}`, http.StatusBadRequest},
		{"no name", `{"date":"2024-01-15","quantity":2}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubReservations{}
			resp := serveWithPrincipal(ReservationsAddSpecial(svc, logger.Discard()), http.MethodPost, "/special", "/special", tc.body, admin)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			if tc.status == http.StatusCreated && svc.special.Quantity != 3 {
				t.Fatalf("unexpected input %+v", svc.special)
			}
		})
	}
}

func TestMeCancelReservationNoContent(t *testing.T) {
	svc := &stubReservations{}
	resp := serveWithPrincipal(MeCancelReservation(svc, logger.Discard()), http.MethodDelete, "/me/reservations/{date}",
		"/me/reservations/2024-01-20", "", supervisor)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if svc.cancelled != calendar.MustParse("2024-01-20") {
		t.Fatalf("unexpected date %q", svc.cancelled)
	}
}
