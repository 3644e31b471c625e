package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/pnpstation/internal/personnel/http"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/notify"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/session"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/postgres"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlite"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/jwtx"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/pnpstation/internal/personnel/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

const sessionIssuer = "pnpstation"

// Application holds the personnel service and all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	redis       *redis.Client // nil unless SESSION_BACKEND=redis
	sessions    *session.Manager
	purger      session.Purger
	sessionPing httpapi.Pinger
	dispatcher  *notify.Dispatcher

	loginService        *service.LoginService
	registrationService *service.RegistrationService
	userService         *service.UserService
	profileService      *service.ProfileService
	leaveService        *service.LeaveService
	deploymentService   *service.DeploymentService
	notificationService *service.NotificationService
	housekeepingService *service.HousekeepingService
	housekeepingStarted bool

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "pnpstation",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates an Application with every dependency initialised. The database
// is migrated before New returns.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if cfg.PepperFile != "" {
		if err := cryptox.LoadPepperFile(cfg.PepperFile); err != nil {
			return nil, fmt.Errorf("failed to load password pepper: %w", err)
		}
	}

	if err := httpx.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to parse TRUSTED_PROXIES: %w", err)
	}

	ctx := context.Background()

	db, err := OpenStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied", "driver", cfg.DB.Driver)

	if err := app.initSessions(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.initDispatcher()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// OpenStore connects to the configured database without migrating it.
func OpenStore(ctx context.Context, cfg DatabaseConfig) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = postgres.NewStore(ctx, cfg.DSN())
	default:
		db, err = sqlite.NewStore(cfg.DSN())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

func (app *Application) initSessions(ctx context.Context) error {
	secret := []byte(app.cfg.Session.Secret)
	if len(secret) == 0 {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = []byte(token)
		app.logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	signer, err := jwtx.NewHS256(secret, sessionIssuer)
	if err != nil {
		return fmt.Errorf("failed to create session signer: %w", err)
	}

	var backend session.Store
	switch app.cfg.Session.Backend {
	case "redis":
		app.redis = redis.NewClient(&redis.Options{
			Addr:     app.cfg.Redis.Addr,
			Password: app.cfg.Redis.Password,
			DB:       app.cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.Redis.Addr, err)
		}

		rs := session.NewRedisStore(app.redis)
		backend, app.sessionPing = rs, rs
	default:
		mem := session.NewMemoryStore()
		backend, app.purger = mem, mem
	}

	app.sessions = session.NewManager(backend, signer, session.Options{
		TTL:    app.cfg.Session.TTL,
		Secure: app.cfg.CookieSecure,
	})
	app.logger.Info("session backend ready", "backend", app.cfg.Session.Backend, "ttl", app.cfg.Session.TTL)
	return nil
}

func (app *Application) initDispatcher() {
	from := notify.FormatAddress(app.cfg.SMTP.SenderName, app.cfg.SMTP.SenderEmail)

	var channels []notify.Channel
	if app.cfg.Email.Key != "" {
		channels = append(channels, notify.NewAPIChannel(app.cfg.Email.URL, app.cfg.Email.Key, from))
	}
	if app.cfg.SMTP.Enabled() {
		channels = append(channels, notify.NewSMTPChannel(
			app.cfg.SMTP.Host,
			app.cfg.SMTP.Port,
			app.cfg.SMTP.Username,
			app.cfg.SMTP.Password,
			from,
		))
	}
	if len(channels) == 0 {
		app.logger.Warn("no email channel configured, logins with 2FA will fail")
	}
	if app.cfg.DegradedOTP() {
		app.logger.Warn("OTP degraded fallback is enabled")
	}

	app.dispatcher = notify.NewDispatcher(app.logger, notify.DispatcherOptions{
		Degraded:      app.cfg.DegradedOTP(),
		ExpiryMinutes: app.cfg.OTP.ExpiryMinutes,
	}, channels...)
}

func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Credentials: &service.CredentialService{Store: app.db},
		OTP: &service.OTPService{
			Store:  app.db,
			Length: app.cfg.OTP.Length,
			TTL:    time.Duration(app.cfg.OTP.ExpiryMinutes) * time.Minute,
		},
		Sender:      app.dispatcher,
		MaxAttempts: app.cfg.OTP.MaxAttempts,
		MaxResends:  app.cfg.OTP.MaxResends,
	}
	app.registrationService = &service.RegistrationService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.profileService = &service.ProfileService{Store: app.db}
	app.leaveService = &service.LeaveService{Store: app.db}
	app.deploymentService = &service.DeploymentService{Store: app.db}
	app.notificationService = &service.NotificationService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.purger, // nil for redis, which expires sessions itself
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions,
		app.sessionPing,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.LoginService = app.loginService
	router.RegistrationService = app.registrationService
	router.UserService = app.userService
	router.ProfileService = app.profileService
	router.LeaveService = app.leaveService
	router.DeploymentService = app.deploymentService
	router.NotificationService = app.notificationService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.housekeepingStarted = true

	app.logger.Info("personnel service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down personnel service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingStarted {
		app.housekeepingService.Stop()
		app.housekeepingStarted = false
	}

	if err := app.Close(); err != nil {
		return err
	}
	app.logger.Info("personnel service stopped")
	return nil
}

// Close releases the database and redis connections.
func (app *Application) Close() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Migrate applies migrations to the configured database and exits.
func Migrate(ctx context.Context, cfg Config) error {
	logger := NewLogger(cfg)

	db, err := OpenStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.Info("database migrations applied", "driver", cfg.DB.Driver)
	return nil
}

// Seed migrates the configured database and creates the accounts in path.
func Seed(ctx context.Context, cfg Config, path string) (int, error) {
	logger := NewLogger(cfg)
	ctx = slogx.WithContext(ctx, logger)

	if cfg.PepperFile != "" {
		if err := cryptox.LoadPepperFile(cfg.PepperFile); err != nil {
			return 0, fmt.Errorf("failed to load password pepper: %w", err)
		}
	}

	users, err := ReadSeedFile(path)
	if err != nil {
		return 0, err
	}

	db, err := OpenStore(ctx, cfg.DB)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return 0, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	n, err := (&service.UserService{Store: db}).Seed(ctx, users)
	if err != nil {
		return 0, err
	}
	logger.Info("seed complete", "created", n, "skipped", len(users)-n)
	return n, nil
}
