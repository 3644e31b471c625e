package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/metrics"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/notify"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

const (
	DefaultMaxOTPAttempts = 5
	DefaultMaxOTPResends  = 5
)

// OTPSender delivers a code to the user. *notify.Dispatcher implements it.
type OTPSender interface {
	SendOTP(ctx context.Context, to, code, username string) notify.Result
}

// LoginService drives a session through Anonymous, PrimaryVerified and
// Authenticated. It takes the current state and returns the next one; the
// caller owns persisting it. On error the returned state is the one to keep.
type LoginService struct {
	Credentials *CredentialService
	OTP         *OTPService
	Sender      OTPSender

	MaxAttempts int
	MaxResends  int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *LoginService) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxOTPAttempts
	}
	return s.MaxAttempts
}

func (s *LoginService) maxResends() int {
	if s.MaxResends <= 0 {
		return DefaultMaxOTPResends
	}
	return s.MaxResends
}

// Login checks the password. Users without 2FA are authenticated at once;
// everyone else gets a code and a pending state. On success the result
// replaces whatever state the session held before; on error the returned
// state is Anonymous and callers may keep the session they had.
func (s *LoginService) Login(ctx context.Context, username, password string) (domain.AuthState, error) {
	now := s.now()
	anon := domain.Anonymous(now)
	l := slogx.FromContext(ctx)

	u, err := s.Credentials.Authenticate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			l.Info("login rejected", "reason", "invalid_credentials")
		}
		return anon, err
	}

	if !u.Active() {
		metrics.LoginsTotal.WithLabelValues("account_inactive").Inc()
		l.Info("login rejected", "reason", "account_inactive", "user_id", u.ID, "status", u.Status)
		return anon, ErrAccountInactive
	}

	if !u.TwoFactorEnabled {
		metrics.LoginsTotal.WithLabelValues("authenticated").Inc()
		l.Info("login succeeded", "user_id", u.ID, "role", u.Role, "two_factor", false)
		return domain.Authenticated(u, now), nil
	}

	if err := s.dispatch(ctx, u); err != nil {
		metrics.LoginsTotal.WithLabelValues("dispatch_failed").Inc()
		return anon, err
	}

	metrics.LoginsTotal.WithLabelValues("otp_required").Inc()
	l.Info("login awaiting otp", "user_id", u.ID)
	return domain.PrimaryVerified(u, now), nil
}

// VerifyOTP redeems code for the pending user. Wrong codes count against the
// session; the last allowed failure drops it back to Anonymous and revokes
// the outstanding code.
func (s *LoginService) VerifyOTP(ctx context.Context, current domain.AuthState, code string) (domain.AuthState, error) {
	if !current.IsPending() {
		return current, ErrNoPendingAuth
	}
	l := slogx.FromContext(ctx)

	ok, err := s.OTP.Verify(ctx, current.UserID, strings.TrimSpace(code))
	if err != nil {
		return current, err
	}

	if ok {
		metrics.OTPVerificationsTotal.WithLabelValues("accepted").Inc()
		l.Info("login succeeded", "user_id", current.UserID, "role", current.Role, "two_factor", true)
		return current.Promote(s.now()), nil
	}

	next := current
	next.Attempts++
	if next.Attempts >= s.maxAttempts() {
		metrics.OTPVerificationsTotal.WithLabelValues("locked_out").Inc()
		l.Warn("otp attempts exhausted", "user_id", current.UserID, "attempts", next.Attempts)
		if err := s.OTP.Revoke(ctx, current.UserID); err != nil {
			l.Error("failed to revoke otp after lockout", "user_id", current.UserID, "error", err)
		}
		return domain.Anonymous(s.now()), ErrTooManyAttempts
	}

	metrics.OTPVerificationsTotal.WithLabelValues("rejected").Inc()
	return next, ErrInvalidOTP
}

// ResendOTP issues and sends a fresh code, which invalidates the previous one.
func (s *LoginService) ResendOTP(ctx context.Context, current domain.AuthState) (domain.AuthState, error) {
	if !current.IsPending() {
		return current, ErrNoPendingAuth
	}
	if current.Resends >= s.maxResends() {
		return current, ErrTooManyAttempts
	}

	u, err := s.Credentials.Store.Users().GetUserByID(ctx, current.UserID)
	if err != nil {
		return current, fmt.Errorf("failed to load pending user: %w", err)
	}
	if !u.Active() {
		return domain.Anonymous(s.now()), ErrAccountInactive
	}

	if err := s.dispatch(ctx, u); err != nil {
		return current, err
	}

	next := current
	next.Resends++
	return next, nil
}

// Logout forgets everything about the session.
func (s *LoginService) Logout(ctx context.Context, current domain.AuthState) domain.AuthState {
	if current.UserID != 0 {
		slogx.FromContext(ctx).Info("logout", "user_id", current.UserID)
	}
	return domain.Anonymous(s.now())
}

// dispatch issues a code for u and hands it to the sender. A code that was
// never delivered is revoked so it cannot linger as the live one.
func (s *LoginService) dispatch(ctx context.Context, u domain.User) error {
	otp, err := s.OTP.Issue(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	res := s.Sender.SendOTP(ctx, u.Email, otp.Code, u.Username)
	if !res.Delivered() {
		if err := s.OTP.Revoke(ctx, u.ID); err != nil {
			slogx.FromContext(ctx).Error("failed to revoke undelivered otp", "user_id", u.ID, "error", err)
		}
		return ErrDispatchFailed
	}
	return nil
}
