package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// SeedUser is an account plus the name and posting to put on its profile.
type SeedUser struct {
	NewUser

	FirstName string
	LastName  string
	Rank      string
	Unit      string
	Station   string
}

// Seed creates the given accounts in one transaction. Usernames that already
// exist are left untouched, so running it twice is harmless. It returns how
// many accounts were created.
func (s *UserService) Seed(ctx context.Context, users []SeedUser) (int, error) {
	l := slogx.FromContext(ctx)
	now := s.now()
	created := 0

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		created = 0
		for _, su := range users {
			_, err := tx.Users().GetUserByUsername(ctx, strings.TrimSpace(su.Username))
			if err == nil {
				l.Info("seed user exists, skipping", "username", su.Username)
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to look up %q: %w", su.Username, err)
			}

			u, err := createUser(ctx, tx, su.NewUser, now)
			if err != nil {
				return fmt.Errorf("failed to seed %q: %w", su.Username, err)
			}
			if err := seedProfile(ctx, tx, u, su); err != nil {
				return fmt.Errorf("failed to seed profile for %q: %w", su.Username, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func seedProfile(ctx context.Context, tx store.Store, u domain.User, su SeedUser) error {
	switch u.Role {
	case domain.RoleAdmin:
		return tx.Profiles().UpsertAdminProfile(ctx, domain.AdminProfile{
			UserID:    u.ID,
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Email:     u.Email,
		})
	case domain.RoleEmployee:
		return tx.Profiles().UpsertEmployeeProfile(ctx, domain.EmployeeProfile{
			UserID:    u.ID,
			FirstName: su.FirstName,
			LastName:  su.LastName,
			Rank:      su.Rank,
			Unit:      su.Unit,
			Station:   su.Station,
		})
	case domain.RoleApplicant:
		p, err := tx.Profiles().GetApplicantProfile(ctx, u.ID)
		if err != nil {
			return err
		}
		p.FirstName, p.LastName = su.FirstName, su.LastName
		return tx.Profiles().UpdateApplicantProfile(ctx, p)
	}
	return nil
}
