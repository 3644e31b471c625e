package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

// Pinger is a dependency readyz can probe. The redis session backend is one.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	pnpsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, pnpsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and, when configured, the session backend.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	pnpsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	pnpsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, sessions Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &pnpsdk.HealthChecks{Database: "ok", Sessions: "ok"}
		status, code := "ok", http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if sessions != nil {
			if err := sessions.Ping(ctx); err != nil {
				checks.Sessions = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, pnpsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
