package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/postgres"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlstore"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var epoch = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func startPostgres(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "personnel",
				"POSTGRES_PASSWORD": "personnel",
				"POSTGRES_DB":       "personnel",
			},
			// The server restarts once after initdb; the second line is the real one.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://personnel:personnel@%s:%s/personnel?sslmode=disable", host, port.Port())
	s, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "migrating twice is a no-op")
	return s
}

func createUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()

	u := domain.User{
		Username:         username,
		Email:            username + "@pnp.test",
		PasswordHash:     "hash",
		Role:             domain.RoleEmployee,
		Status:           domain.StatusActive,
		TwoFactorEnabled: true,
		CreatedAt:        epoch,
	}
	id, err := s.Users().CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.NotZero(t, id)
	u.ID = id
	return u
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	s := startPostgres(t)

	t.Run("users", func(t *testing.T) {
		alice := createUser(t, s, "alice")

		got, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, alice, got)

		_, err = s.Users().CreateUser(ctx, domain.User{
			Username: "alice", Email: "other@pnp.test", PasswordHash: "x",
			Role: domain.RoleEmployee, Status: domain.StatusActive, CreatedAt: epoch,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.Users().CreateUser(ctx, domain.User{
			Username: "alice2", Email: "alice@pnp.test", PasswordHash: "x",
			Role: domain.RoleEmployee, Status: domain.StatusActive, CreatedAt: epoch,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		require.NoError(t, s.Users().SetTwoFactorEnabled(ctx, alice.ID, false))
		got, err = s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, got.TwoFactorEnabled)
	})

	t.Run("otp codes", func(t *testing.T) {
		u := createUser(t, s, "officer")
		code := domain.OneTimeCode{UserID: u.ID, Code: "123456", CreatedAt: epoch, ExpiresAt: epoch.Add(5 * time.Minute)}

		id, err := s.OTPCodes().CreateOTPCode(ctx, code)
		require.NoError(t, err)
		require.NotZero(t, id)

		_, err = s.OTPCodes().CreateOTPCode(ctx, code)
		require.ErrorIs(t, err, store.ErrAlreadyExists, "one live code per user")

		got, err := s.OTPCodes().FindRedeemableOTPCode(ctx, u.ID, "123456", epoch.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, id, got.ID)
		require.False(t, got.Used)

		ok, err := s.OTPCodes().MarkOTPCodeUsed(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = s.OTPCodes().MarkOTPCodeUsed(ctx, id)
		require.NoError(t, err)
		require.False(t, ok)

		codes, err := s.OTPCodes().ListOTPCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, codes, 1)
		require.True(t, codes[0].Used)

		// A used code no longer counts against the live index.
		_, err = s.OTPCodes().CreateOTPCode(ctx, code)
		require.NoError(t, err)

		n, err := s.OTPCodes().DeleteUnusedOTPCodes(ctx, u.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		n, err = s.OTPCodes().DeleteExpiredOTPCodes(ctx, epoch.Add(time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("issue and verify", func(t *testing.T) {
		u := createUser(t, s, "sergeant")
		otp := &service.OTPService{Store: s}

		first, err := otp.Issue(ctx, u.ID)
		require.NoError(t, err)
		second, err := otp.Issue(ctx, u.ID)
		require.NoError(t, err)

		codes, err := s.OTPCodes().ListOTPCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, codes, 1)
		require.Equal(t, second.ID, codes[0].ID)

		if first.Code != second.Code {
			ok, err := otp.Verify(ctx, u.ID, first.Code)
			require.NoError(t, err)
			require.False(t, ok, "a resent code replaces the earlier one")
		}

		ok, err := otp.Verify(ctx, u.ID, second.Code)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = otp.Verify(ctx, u.ID, second.Code)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("delete cascades", func(t *testing.T) {
		u := createUser(t, s, "leaving")
		_, err := s.OTPCodes().CreateOTPCode(ctx, domain.OneTimeCode{UserID: u.ID, Code: "111111", CreatedAt: epoch, ExpiresAt: epoch.Add(time.Minute)})
		require.NoError(t, err)
		_, err = s.Notifications().CreateNotification(ctx, domain.Notification{UserID: u.ID, Title: "t", Message: "m", Type: domain.NotificationGeneral, CreatedAt: epoch})
		require.NoError(t, err)

		require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
		require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)

		codes, err := s.OTPCodes().ListOTPCodes(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, codes)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			createUser(t, tx, "ghost")
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByUsername(ctx, "ghost")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
