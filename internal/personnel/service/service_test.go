package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/notify"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlite"
	"github.com/aussiebroadwan/pnpstation/internal/personnel/store/drivers/sqlstore"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

var epoch = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: epoch} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sent struct {
	To, Code, Username string
}

// captureSender records every code instead of emailing it.
type captureSender struct {
	mu   sync.Mutex
	sent []sent
	fail bool
}

func (c *captureSender) SendOTP(_ context.Context, to, code, username string) notify.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return notify.Result{}
	}
	c.sent = append(c.sent, sent{To: to, Code: code, Username: username})
	return notify.Result{Channel: "capture"}
}

func (c *captureSender) last(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent, "no code was sent")
	return c.sent[len(c.sent)-1].Code
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// wrongCode returns a code of the same length that differs from code.
func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

type fixture struct {
	store  *sqlstore.Store
	clock  *clock
	sender *captureSender
	otp    *OTPService
	login  *LoginService
	users  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newStore(t)
	clk := newClock()
	sender := &captureSender{}
	otp := &OTPService{Store: st, Now: clk.Now}

	return &fixture{
		store:  st,
		clock:  clk,
		sender: sender,
		otp:    otp,
		login: &LoginService{
			Credentials: &CredentialService{Store: st},
			OTP:         otp,
			Sender:      sender,
			Now:         clk.Now,
		},
		users: &UserService{Store: st, Now: clk.Now},
	}
}

func (f *fixture) user(t *testing.T, username string, role domain.Role, status domain.Status, twoFactor bool) domain.User {
	t.Helper()

	u, err := f.users.Create(context.Background(), NewUser{
		Username:         username,
		Email:            username + "@pnp.test",
		Password:         username + "-password",
		Role:             role,
		Status:           status,
		TwoFactorEnabled: twoFactor,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) codes(t *testing.T, userID int64) []domain.OneTimeCode {
	t.Helper()
	codes, err := f.store.OTPCodes().ListOTPCodes(context.Background(), userID)
	require.NoError(t, err)
	return codes
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
