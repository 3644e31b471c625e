package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/metrics"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

const (
	DefaultOTPLength = 6
	DefaultOTPTTL    = 5 * time.Minute
)

// OTPService issues and redeems emailed login codes.
type OTPService struct {
	Store  store.Store
	Length int
	TTL    time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OTPService) length() int {
	if s.Length <= 0 {
		return DefaultOTPLength
	}
	return s.Length
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultOTPTTL
	}
	return s.TTL
}

// Issue mints a new code for userID, replacing any unused one. The delete and
// insert share a transaction so a concurrent verify never sees the user
// without a code or with two.
func (s *OTPService) Issue(ctx context.Context, userID int64) (domain.OneTimeCode, error) {
	code, err := cryptox.RandomDigits(s.length())
	if err != nil {
		return domain.OneTimeCode{}, err
	}

	now := s.now()
	otp := domain.OneTimeCode{
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}

	// A racing issue for the same user can slip its insert between our delete
	// and insert; the live-code index rejects ours and one retry settles it.
	for attempt := 0; ; attempt++ {
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.OTPCodes().DeleteUnusedOTPCodes(ctx, userID); err != nil {
				return fmt.Errorf("failed to delete previous codes: %w", err)
			}
			id, err := tx.OTPCodes().CreateOTPCode(ctx, otp)
			if err != nil {
				return err
			}
			otp.ID = id
			return nil
		})
		if errors.Is(err, store.ErrAlreadyExists) && attempt == 0 {
			continue
		}
		break
	}
	if err != nil {
		return domain.OneTimeCode{}, fmt.Errorf("failed to store code: %w", err)
	}

	metrics.OTPIssuedTotal.Inc()
	slogx.FromContext(ctx).Debug("otp issued", "user_id", userID, "expires_at", otp.ExpiresAt)
	return otp, nil
}

// Verify redeems code for userID. It reports false for wrong, expired and
// already used codes alike; only store failures are errors.
func (s *OTPService) Verify(ctx context.Context, userID int64, code string) (bool, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	var redeemed bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		otp, err := tx.OTPCodes().FindRedeemableOTPCode(ctx, userID, code, now)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ok, err := tx.OTPCodes().MarkOTPCodeUsed(ctx, otp.ID)
		if err != nil {
			return err
		}
		if !ok {
			l.Info("otp already redeemed concurrently", "user_id", userID, "otp_id", otp.ID)
			return nil
		}
		redeemed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to verify code: %w", err)
	}

	if !redeemed {
		l.Info("otp rejected", "user_id", userID)
	}
	return redeemed, nil
}

// Revoke deletes every unused code of the user.
func (s *OTPService) Revoke(ctx context.Context, userID int64) error {
	_, err := s.Store.OTPCodes().DeleteUnusedOTPCodes(ctx, userID)
	return err
}
