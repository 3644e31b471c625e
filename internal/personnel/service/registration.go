package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// Registration is a self service sign up.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type RegistrationService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Register creates an active applicant with 2FA on, its applicant profile and
// a notification for every admin, all in one transaction.
func (s *RegistrationService) Register(ctx context.Context, r Registration) (domain.User, error) {
	if r.Password != r.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = createUser(ctx, tx, NewUser{
			Username:         r.Username,
			Email:            r.Email,
			Password:         r.Password,
			Role:             domain.RoleApplicant,
			Status:           domain.StatusActive,
			TwoFactorEnabled: true,
		}, now)
		if err != nil {
			return err
		}

		return notifyRole(ctx, tx, domain.RoleAdmin, domain.NotificationApplicant,
			"New Applicant Registration",
			fmt.Sprintf("New applicant %q has registered.", u.Username),
			u.ID, now,
		)
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("applicant registered", "user_id", u.ID)
	return u, nil
}
