package controllers

import (
	"net/http"
	"strings"

	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/api/validators"
	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type approveRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	WarName    string `json:"war_name" validate:"required,max=60"`
	Rank       string `json:"rank" validate:"required,max=60"`
	SectorName string `json:"sector_name" validate:"required,max=80"`
	Role       string `json:"role,omitempty"`
}

// PeopleList answers the directory query; supervisors only see their sector.
func PeopleList(svc people.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "people service unavailable"))
			return
		}
		filter, err := parsePeopleFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), middleware.PrincipalFromContext(r.Context()), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PeoplePending lists accounts waiting for approval.
func PeoplePending(svc people.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "people service unavailable"))
			return
		}
		list, err := svc.Pending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PeopleApprove(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}
		var body approveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := accounts.ApproveInput{
			Name:       validators.SanitizeString(body.Name, 120),
			WarName:    validators.SanitizeString(body.WarName, 60),
			Rank:       validators.SanitizeString(body.Rank, 60),
			SectorName: validators.SanitizeString(body.SectorName, 80),
		}
		if strings.TrimSpace(body.Role) != "" {
			role, err := enums.ParseRole(body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").
					WithDetails(map[string]any{"field": "role"}))
				return
			}
			input.Role = role
		}
		person, err := svc.Approve(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, person)
	}
}

// PeopleDeny deletes a pending account. Its reservations stay until the sweep.
func PeopleDeny(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}
		if err := svc.Deny(r.Context(), middleware.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func parsePeopleFilter(r *http.Request) (people.Filter, error) {
	var filter people.Filter
	sectorID, err := validators.ParseQueryInt64(r, "sector_id")
	if err != nil {
		return filter, err
	}
	filter.SectorID = sectorID

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseAccountStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := enums.ParseRole(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").WithDetails(map[string]any{"field": "role"})
		}
		filter.Role = &role
	}
	return filter, nil
}
