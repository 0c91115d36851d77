package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/erancho/erancho-backend/api/middleware"
	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/api/validators"
	"github.com/erancho/erancho-backend/internal/reports"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/calendar"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
)

type reportReader interface {
	Daily(ctx context.Context, date calendar.Date) (*reports.DailyReport, error)
	SectorDay(ctx context.Context, actor pkgAuth.Principal, sectorID int64, date calendar.Date) (*reports.SectorDay, error)
}

// ReportsDaily returns the present/absent partition of a date, today by default.
func ReportsDaily(svc reportReader, clock calendar.Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}
		date, err := reportDate(r, clock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Daily(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportsDailyPrint renders the daily report as a printable HTML page.
func ReportsDailyPrint(svc reportReader, clock calendar.Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}
		date, err := reportDate(r, clock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		report, err := svc.Daily(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = responses.WriteHTML(w, func(out io.Writer) error {
			return reports.RenderDaily(out, report)
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render report"))
		}
	}
}

// ReportsSector is the supervisor day view. Supervisors default to their own sector.
func ReportsSector(svc reportReader, clock calendar.Clock, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}
		actor := middleware.PrincipalFromContext(r.Context())
		date, err := reportDate(r, clock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sectorID, err := validators.ParseQueryInt64(r, "sector_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := actor.SectorID
		if sectorID != nil {
			id = *sectorID
		}
		if id == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sector_id is required").
				WithDetails(map[string]any{"field": "sector_id"}))
			return
		}
		view, err := svc.SectorDay(r.Context(), actor, id, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func reportDate(r *http.Request, clock calendar.Clock) (calendar.Date, error) {
	date, err := validators.ParseQueryDate(r, "date")
	if err != nil {
		return "", err
	}
	if date == nil {
		return clock.Today(), nil
	}
	return *date, nil
}
