package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// CredentialService checks usernames and passwords.
type CredentialService struct {
	Store store.Store
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both give ErrInvalidCredentials after the same amount of
// hashing work. Account status is left to the caller.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.DummyVerify(password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Warn("stored password hash unusable", "user_id", u.ID, "error", err)
		}
		return domain.User{}, ErrInvalidCredentials
	}

	if cryptox.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, password)
	}
	return u, nil
}

// rehash upgrades legacy hashes in place. Failure only costs us the upgrade.
func (s *CredentialService) rehash(ctx context.Context, u domain.User, password string) {
	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to upgrade password hash", "user_id", u.ID, "error", err)
		return
	}
	slogx.FromContext(ctx).Info("upgraded password hash", "user_id", u.ID)
}
