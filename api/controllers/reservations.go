package controllers

import (
	"net/http"
	"strings"

	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/api/validators"
	"github.com/erancho/erancho-backend/internal/reservations"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type toggleRequest struct {
	PersonID string `json:"person_id" validate:"required,cpf"`
	Date     string `json:"date" validate:"required,isodate"`
}

type attendanceRequest struct {
	AttendanceConfirmed *bool `json:"attendance_confirmed" validate:"required"`
}

type specialRequest struct {
	Date     string `json:"date" validate:"required,isodate"`
	Name     string `json:"name" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=200"`
}

// ReservationsList filters by person_id, sector_id or date.
func ReservationsList(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		query := reservations.Query{PersonCPF: strings.TrimSpace(r.URL.Query().Get("person_id"))}
		sectorID, err := validators.ParseQueryInt64(r, "sector_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.SectorID = sectorID
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.Date = date

		rows, err := svc.List(r.Context(), middleware.PrincipalFromContext(r.Context()), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReservationsReplace replaces another person's reservation set.
func ReservationsReplace(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		var body datesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dates, err := validators.ParseDates("dates", body.Dates)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Replace(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), dates)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ReservationsToggle(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		var body toggleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseDateParam("date", body.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Toggle(r.Context(), middleware.PrincipalFromContext(r.Context()), strings.TrimSpace(body.PersonID), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ReservationsMarkAttendance sets or clears the attendance flag of one reservation.
func ReservationsMarkAttendance(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation id").
				WithDetails(map[string]any{"field": "id"}))
			return
		}
		var body attendanceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.MarkAttendance(r.Context(), middleware.PrincipalFromContext(r.Context()), id, *body.AttendanceConfirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// ReservationsAddSpecial books anonymous guest meals for a date.
func ReservationsAddSpecial(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		var body specialRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseDateParam("date", body.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.AddSpecial(r.Context(), middleware.PrincipalFromContext(r.Context()), reservations.SpecialInput{
			Date:     date,
			Name:     validators.SanitizeString(body.Name, 120),
			Quantity: body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rows)
	}
}
