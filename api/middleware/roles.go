package middleware

import (
	"net/http"

	"github.com/shopfront/storefront/api/responses"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/logger"
)

// RequireRole lets the request through when the token role is one of the
// allowed roles. It must run after Auth.
func RequireRole(allowed enums.UserRole, logg *logger.Logger, more ...enums.UserRole) func(http.Handler) http.Handler {
	roles := append([]enums.UserRole{allowed}, more...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := enums.UserRole(RoleFromContext(r.Context()))
			for _, role := range roles {
				if current == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			err := pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role").
				WithDetails(map[string]any{"required": roles})
			responses.WriteError(r.Context(), logg, w, err)
		})
	}
}
