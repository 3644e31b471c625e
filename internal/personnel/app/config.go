package app

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env                  string        `env:"ENV" envDefault:"dev"` // dev, staging, production
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"text"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"15s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"10m"`
	PepperFile           string        `env:"PASSWORD_PEPPER_FILE"` // Optional: no pepper when empty
	CookieSecure         bool          `env:"COOKIE_SECURE" envDefault:"false"`
	TrustedProxies       []string      `env:"TRUSTED_PROXIES" envSeparator:","` // CIDRs allowed to set X-Forwarded-For

	DB      DatabaseConfig `envPrefix:"DB_"`
	OTP     OTPConfig      `envPrefix:"OTP_"`
	SMTP    SMTPConfig     `envPrefix:"SMTP_"`
	Email   EmailAPIConfig `envPrefix:"EMAIL_API_"`
	Session SessionConfig  `envPrefix:"SESSION_"`
	Redis   RedisConfig    `envPrefix:"REDIS_"`
}

type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"sqlite"` // sqlite or postgres
	File     string `env:"FILE" envDefault:"personnel.db"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"pnpsanjuan"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

type OTPConfig struct {
	Length           int  `env:"LENGTH" envDefault:"6"`
	ExpiryMinutes    int  `env:"EXPIRY_MINUTES" envDefault:"5"`
	MaxAttempts      int  `env:"MAX_ATTEMPTS" envDefault:"5"`
	MaxResends       int  `env:"MAX_RESENDS" envDefault:"5"`
	DegradedFallback bool `env:"DEGRADED_FALLBACK" envDefault:"false"`
}

type SMTPConfig struct {
	Host        string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	SenderName  string `env:"SENDER_NAME" envDefault:"PNP San Juan"`
	SenderEmail string `env:"SENDER_EMAIL"`
}

type EmailAPIConfig struct {
	URL string `env:"URL" envDefault:"https://api.resend.com/emails"`
	Key string `env:"KEY"`
}

type SessionConfig struct {
	Secret  string        `env:"SECRET"` // Optional: random per boot when empty
	TTL     time.Duration `env:"TTL" envDefault:"12h"`
	Backend string        `env:"BACKEND" envDefault:"memory"` // memory or redis
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.OTP.Length < 4 || c.OTP.Length > cryptox.MaxDigits {
		return fmt.Errorf("OTP_LENGTH must be between 4 and %d, got %d", cryptox.MaxDigits, c.OTP.Length)
	}
	if c.OTP.ExpiryMinutes <= 0 {
		return fmt.Errorf("OTP_EXPIRY_MINUTES must be positive")
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

// Production reports whether ENV names a production deployment.
func (c Config) Production() bool { return c.Env == "production" }

// DegradedOTP reports whether logins may continue when no channel can deliver
// a code. The operator flag alone is not enough outside production.
func (c Config) DegradedOTP() bool { return c.Production() && c.OTP.DegradedFallback }

// DSN is the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver != "postgres" {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.File)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Enabled reports whether enough is configured to send through SMTP.
func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.SenderEmail != "" }
