package middleware

import (
	"net/http"

	"github.com/erancho/erancho-backend/api/responses"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
)

// RequireRoles lets the request through when the principal holds one of the roles.
func RequireRoles(logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal.IsZero() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !principal.HasRole(allowed...) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required").
					WithDetails(map[string]any{"role": principal.Role.String()}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits ADM Local and ADM Geral.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.RoleAdmLocal, enums.RoleAdmGeral)
}

// RequireStaff admits supervisors and admins.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRoles(logg, enums.RoleFiscSU, enums.RoleAdmLocal, enums.RoleAdmGeral)
}
