package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

// NewUser is an account to create. Registration fixes Role to applicant;
// admins may pick any role.
type NewUser struct {
	Username         string
	Email            string
	Password         string
	Role             domain.Role
	Status           domain.Status
	TwoFactorEnabled bool
}

// UserPatch changes only the fields that are set.
type UserPatch struct {
	Status           *domain.Status
	Role             *domain.Role
	TwoFactorEnabled *bool
}

type UserService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (s *UserService) List(ctx context.Context, role domain.Role, page domain.PageRequest) (domain.Page[domain.User], error) {
	if role != "" && !role.Valid() {
		return domain.Page[domain.User]{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, role)
	}
	users, total, err := s.Store.Users().ListUsers(ctx, role, page)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return domain.NewPage(users, total, page), nil
}

// Create adds an account. Applicants also get an applicant profile so they
// show up in the applicant list straight away.
func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		u, err = createUser(ctx, tx, in, s.now())
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func createUser(ctx context.Context, tx store.Store, in NewUser, now time.Time) (domain.User, error) {
	if !in.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, in.Role)
	}
	if in.Status == "" {
		in.Status = domain.StatusActive
	}
	if !in.Status.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, in.Status)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := domain.User{
		Username:         strings.TrimSpace(in.Username),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:     hash,
		Role:             in.Role,
		Status:           in.Status,
		TwoFactorEnabled: in.TwoFactorEnabled,
		CreatedAt:        now,
	}

	id, err := tx.Users().CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrAlreadyExists
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = id

	if u.Role == domain.RoleApplicant {
		err := tx.Profiles().CreateApplicantProfile(ctx, domain.ApplicantProfile{
			UserID:            id,
			Email:             u.Email,
			ApplicationStatus: domain.ApplicationPending,
			AppliedAt:         now,
		})
		if err != nil {
			return domain.User{}, fmt.Errorf("failed to create applicant profile: %w", err)
		}
	}
	return u, nil
}

// Update applies patch to user id and returns the result.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (domain.User, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, *patch.Status)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, *patch.Role)
	}

	var u domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if patch.Status != nil {
			if err := tx.Users().UpdateUserStatus(ctx, id, *patch.Status); err != nil {
				return err
			}
		}
		if patch.Role != nil {
			if err := tx.Users().UpdateUserRole(ctx, id, *patch.Role); err != nil {
				return err
			}
		}
		if patch.TwoFactorEnabled != nil {
			if err := tx.Users().SetTwoFactorEnabled(ctx, id, *patch.TwoFactorEnabled); err != nil {
				return err
			}
		}
		var err error
		u, err = tx.Users().GetUserByID(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	slogx.FromContext(ctx).Info("user updated", "user_id", id)
	return u, nil
}

// Delete removes the account and, through the schema, everything it owns.
// Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidRequest)
	}
	err := s.Store.Users().DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id, "by", actorID)
	return nil
}
