package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/api/validators"
	"github.com/erancho/erancho-backend/internal/audit"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/pagination"
)

type auditReader interface {
	List(ctx context.Context, params audit.ListParams) (*audit.Page, error)
}

// AuditList pages through the newest events of one aggregate (a CPF, sector id or date).
func AuditList(svc auditReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}
		aggregateID := strings.TrimSpace(r.URL.Query().Get("aggregate_id"))
		if aggregateID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "aggregate_id is required").
				WithDetails(map[string]any{"field": "aggregate_id"}))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), audit.ListParams{
			AggregateID: aggregateID,
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
