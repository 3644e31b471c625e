package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

type sessionCtxKey struct{}

// SessionMiddleware loads the session for every request. Authenticated
// sessions also put an httpx.Identity on the context so RequireRole and the
// per-user rate limits can see the caller. Pending sessions do not.
func SessionMiddleware(m *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r)
			if err != nil {
				slogx.FromContext(r.Context()).Error("failed to load session", "error", err)
				httpx.WriteError(w, http.StatusServiceUnavailable, "server_error", "Session storage is unavailable.")
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
			if s.State.IsAuthenticated() {
				ctx = httpx.WithIdentity(ctx, httpx.Identity{
					UserID:   s.State.UserID,
					Username: s.State.Username,
					Role:     string(s.State.Role),
				})
				ctx = slogx.With(ctx, "user_id", s.State.UserID, "role", s.State.Role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session SessionMiddleware loaded.
func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*session.Session)
	return s
}

// identity returns the authenticated caller. Routes behind RequireRole always
// have one.
func identity(r *http.Request) httpx.Identity {
	id, _ := httpx.IdentityFromContext(r.Context())
	return id
}
