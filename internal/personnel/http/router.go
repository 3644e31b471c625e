package http

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/aussiebroadwan/pnpstation/api/personnel" // Swagger docs
	"github.com/aussiebroadwan/pnpstation/internal/personnel/metrics"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	roleAdmin     = "admin"
	roleEmployee  = "employee"
	roleApplicant = "applicant"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *session.Manager
	sessionPing  Pinger // optional: only the redis backend
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	LoginService        *service.LoginService
	RegistrationService *service.RegistrationService
	UserService         *service.UserService
	ProfileService      *service.ProfileService
	LeaveService        *service.LeaveService
	DeploymentService   *service.DeploymentService
	NotificationService *service.NotificationService
}

func NewRouter(
	sessions *session.Manager,
	sessionPing Pinger,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		sessionPing:  sessionPing,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		SessionMiddleware(r.sessions),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerEmployee()
	r.registerApplicant()
	r.registerNotifications()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			PNP San Juan Personnel API
//	@version		0.1.0
//	@description	Personnel records, leave and deployments for the PNP San Juan station.
//	@description
//	@description	Sessions are cookie based. Logging in as a user with 2FA emails a one time code that must be verified before any role gated endpoint is reachable.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/pnpstation
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// role wraps h for callers holding one of roles, rate limited per user.
func role(h http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	return httpx.Chain(h,
		httpx.RequireRole(roles...),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Login:        r.LoginService,
		Registration: r.RegistrationService,
		Sessions:     r.sessions,
	}

	// Password guessing is limited per IP and username, and per username
	// across all addresses
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
			httpx.RateLimitByJSONField(httpx.StrictLimit, "username"),
		),
	)

	// The pending session carries no identity yet, so codes are limited per IP
	r.Mux.Handle("POST /v1/auth/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/otp/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/session",
		httpx.Chain(http.HandlerFunc(h.HandleSession),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	users := &UsersHandler{UserService: r.UserService}
	profiles := &ProfilesHandler{ProfileService: r.ProfileService}
	leaves := &LeavesHandler{LeaveService: r.LeaveService}
	deployments := &DeploymentsHandler{DeploymentService: r.DeploymentService}

	r.Mux.Handle("GET /v1/admin/users", role(users.HandleList, httpx.LenientLimit, roleAdmin))
	r.Mux.Handle("POST /v1/admin/users", role(users.HandleCreate, httpx.ModerateLimit, roleAdmin))
	r.Mux.Handle("PATCH /v1/admin/users/{id}", role(users.HandleUpdate, httpx.ModerateLimit, roleAdmin))
	r.Mux.Handle("DELETE /v1/admin/users/{id}", role(users.HandleDelete, httpx.ModerateLimit, roleAdmin))

	r.Mux.Handle("GET /v1/admin/profile", role(profiles.HandleGetAdmin, httpx.LenientLimit, roleAdmin))
	r.Mux.Handle("PUT /v1/admin/profile", role(profiles.HandlePutAdmin, httpx.ModerateLimit, roleAdmin))

	r.Mux.Handle("GET /v1/admin/applicants", role(profiles.HandleListApplicants, httpx.LenientLimit, roleAdmin))
	r.Mux.Handle("PATCH /v1/admin/applicants/{id}", role(profiles.HandleSetApplicationStatus, httpx.ModerateLimit, roleAdmin))

	r.Mux.Handle("GET /v1/admin/leaves", role(leaves.HandleListAll, httpx.LenientLimit, roleAdmin))
	r.Mux.Handle("POST /v1/admin/leaves/{id}/review", role(leaves.HandleReview, httpx.ModerateLimit, roleAdmin))

	r.Mux.Handle("GET /v1/admin/deployments", role(deployments.HandleList, httpx.LenientLimit, roleAdmin))
	r.Mux.Handle("POST /v1/admin/deployments", role(deployments.HandleCreate, httpx.ModerateLimit, roleAdmin))
	r.Mux.Handle("PATCH /v1/admin/deployments/{id}", role(deployments.HandleUpdate, httpx.ModerateLimit, roleAdmin))
}

func (r *Router) registerEmployee() {
	profiles := &ProfilesHandler{ProfileService: r.ProfileService}
	leaves := &LeavesHandler{LeaveService: r.LeaveService}

	r.Mux.Handle("GET /v1/employee/profile", role(profiles.HandleGetEmployee, httpx.LenientLimit, roleEmployee))
	r.Mux.Handle("PUT /v1/employee/profile", role(profiles.HandlePutEmployee, httpx.ModerateLimit, roleEmployee))
	r.Mux.Handle("GET /v1/employee/records", role(profiles.HandleRecords, httpx.LenientLimit, roleEmployee))
	r.Mux.Handle("POST /v1/employee/education", role(profiles.HandleAddEducation, httpx.ModerateLimit, roleEmployee))
	r.Mux.Handle("DELETE /v1/employee/education/{id}", role(profiles.HandleDeleteEducation, httpx.ModerateLimit, roleEmployee))

	r.Mux.Handle("GET /v1/employee/leaves", role(leaves.HandleListOwn, httpx.LenientLimit, roleEmployee))
	r.Mux.Handle("POST /v1/employee/leaves", role(leaves.HandleApply, httpx.ModerateLimit, roleEmployee))
	r.Mux.Handle("GET /v1/employee/leaves/{id}", role(leaves.HandleGet, httpx.LenientLimit, roleEmployee))
	r.Mux.Handle("PUT /v1/employee/leaves/{id}", role(leaves.HandleUpdate, httpx.ModerateLimit, roleEmployee))
	r.Mux.Handle("DELETE /v1/employee/leaves/{id}", role(leaves.HandleDelete, httpx.ModerateLimit, roleEmployee))
}

func (r *Router) registerApplicant() {
	profiles := &ProfilesHandler{ProfileService: r.ProfileService}

	r.Mux.Handle("GET /v1/applicant/profile", role(profiles.HandleGetApplicant, httpx.LenientLimit, roleApplicant))
	r.Mux.Handle("PUT /v1/applicant/profile", role(profiles.HandlePutApplicant, httpx.ModerateLimit, roleApplicant))
}

func (r *Router) registerNotifications() {
	h := &NotificationsHandler{NotificationService: r.NotificationService}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.RequireIdentity(),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/notifications", secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notifications/{id}/read", secured(h.HandleMarkRead, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/notifications/read-all", secured(h.HandleMarkAllRead, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessionPing),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
