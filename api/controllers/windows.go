package controllers

import (
	"net/http"

	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/internal/schedule"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type policyWindowReader interface {
	Policy(name string) (*schedule.WindowView, error)
}

// WindowsGet lists the dates of a named policy for today.
func WindowsGet(svc policyWindowReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "window service unavailable"))
			return
		}
		view, err := svc.Policy(chi.URLParam(r, "policy"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
