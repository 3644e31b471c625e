package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// RequireRole lets the request through only when the caller's role is one of
// roles. An anonymous caller gets 401, a logged in caller with the wrong role
// gets 403.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "login_required", "Please log in to access this page.")
				return
			}

			if !slices.Contains(roles, id.Role) {
				slogx.FromContext(r.Context()).Warn("access denied",
					"user_id", id.UserID,
					"role", id.Role,
					"required", roles,
				)
				WriteError(w, http.StatusForbidden, "access_denied", "Access denied.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
