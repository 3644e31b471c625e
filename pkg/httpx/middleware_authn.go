package httpx

import "net/http"

// RequireIdentity rejects requests that reached it without an authenticated
// identity on the context. Whatever resolves the session must run first.
func RequireIdentity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				WriteError(w, http.StatusUnauthorized, "login_required", "Please log in to access this page.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
