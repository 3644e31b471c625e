package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/metrics"
)

// Channel is one way of getting an email to a user.
type Channel interface {
	Name() string
	Send(ctx context.Context, e Email) error
}

// Result says how a code reached, or failed to reach, the user.
type Result struct {
	// Channel is the name of the channel that delivered, empty when none did.
	Channel string

	// Degraded is set when every channel failed and the fallback policy let
	// the login continue with the code only in the server log.
	Degraded bool
}

// Delivered reports whether the login may proceed.
func (r Result) Delivered() bool { return r.Channel != "" || r.Degraded }

// Dispatcher tries its channels in order and applies the degraded policy
// when all of them fail. It never returns an error.
type Dispatcher struct {
	channels      []Channel
	timeout       time.Duration
	degraded      bool
	expiryMinutes int
	logger        *slog.Logger
}

type DispatcherOptions struct {
	// Timeout bounds each channel attempt.
	Timeout time.Duration

	// Degraded enables the log-and-continue fallback. Callers only set it in
	// production with the operator flag on.
	Degraded bool

	// ExpiryMinutes is quoted in the email body.
	ExpiryMinutes int
}

func NewDispatcher(logger *slog.Logger, opts DispatcherOptions, channels ...Channel) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Dispatcher{
		channels:      channels,
		timeout:       opts.Timeout,
		degraded:      opts.Degraded,
		expiryMinutes: opts.ExpiryMinutes,
		logger:        logger,
	}
}

// SendOTP delivers code to the user at to.
func (d *Dispatcher) SendOTP(ctx context.Context, to, code, username string) Result {
	email, err := OTPEmail(to, username, code, d.expiryMinutes)
	if err != nil {
		d.logger.Error("failed to render otp email", "error", err)
		return d.fallback(username, code)
	}

	for _, ch := range d.channels {
		if d.attempt(ctx, ch, email) {
			return Result{Channel: ch.Name()}
		}
	}

	return d.fallback(username, code)
}

func (d *Dispatcher) attempt(ctx context.Context, ch Channel, email Email) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := ch.Send(ctx, email)
	metrics.OTPDispatchDuration.WithLabelValues(ch.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OTPDispatchTotal.WithLabelValues(ch.Name(), "failed").Inc()
		d.logger.Warn("otp delivery failed", "channel", ch.Name(), "error", err)
		return false
	}

	metrics.OTPDispatchTotal.WithLabelValues(ch.Name(), "sent").Inc()
	d.logger.Info("otp delivered", "channel", ch.Name())
	return true
}

func (d *Dispatcher) fallback(username, code string) Result {
	if !d.degraded {
		metrics.OTPDispatchTotal.WithLabelValues("degraded", "failed").Inc()
		d.logger.Error("otp delivery failed on every channel", "username", username)
		return Result{}
	}

	metrics.OTPDispatchTotal.WithLabelValues("degraded", "sent").Inc()
	d.logger.Warn("otp delivery failed on every channel, continuing in degraded mode",
		"username", username,
		"otp_code", code,
	)
	return Result{Degraded: true}
}
