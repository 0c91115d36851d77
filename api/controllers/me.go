package controllers

import (
	"context"
	"net/http"

	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/api/validators"
	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/reservations"
	"github.com/erancho/erancho-backend/internal/schedule"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ownWindowReader interface {
	Own(ctx context.Context, actor pkgAuth.Principal) (*schedule.OwnWindow, error)
}

type profileRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	WarName string `json:"war_name" validate:"required,max=60"`
}

type datesRequest struct {
	Dates []string `json:"dates" validate:"required,dive,isodate"`
}

// MeGet returns the caller's own person record.
func MeGet(svc people.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "people service unavailable"))
			return
		}
		actor := middleware.PrincipalFromContext(r.Context())
		person, err := svc.Get(r.Context(), actor.CPF)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, person)
	}
}

// MeUpdate edits the caller's name and war name.
func MeUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}
		var body profileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor := middleware.PrincipalFromContext(r.Context())
		person, err := svc.UpdateProfile(r.Context(), actor, accounts.ProfileInput{
			Name:    validators.SanitizeString(body.Name, 120),
			WarName: validators.SanitizeString(body.WarName, 60),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, person)
	}
}

// MeWindow returns the self-service window with the caller's reservations marked.
func MeWindow(svc ownWindowReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "window service unavailable"))
			return
		}
		view, err := svc.Own(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// MeReservations lists the caller's reservations.
func MeReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		actor := middleware.PrincipalFromContext(r.Context())
		rows, err := svc.ListForPerson(r.Context(), actor, actor.CPF)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MeReplaceReservations replaces the caller's reservation set.
func MeReplaceReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
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
		rows, err := svc.ReplaceOwn(r.Context(), middleware.PrincipalFromContext(r.Context()), dates)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MeCancelReservation drops one future reservation of the caller.
func MeCancelReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}
		date, err := validators.ParseDateParam("date", chi.URLParam(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CancelOwn(r.Context(), middleware.PrincipalFromContext(r.Context()), date); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
