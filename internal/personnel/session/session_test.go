package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/jwtx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func alice(now time.Time) domain.AuthState {
	return domain.Authenticated(domain.User{ID: 7, Username: "alice", Role: domain.RoleEmployee}, now)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, "sid-1", alice(now), time.Minute))

	got, err := m.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.UserID)

	_, err = m.Get(ctx, "sid-2")
	require.ErrorIs(t, err, ErrNotFound)

	t.Run("expired entries are hidden then purged", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		_, err := m.Get(ctx, "sid-1")
		require.ErrorIs(t, err, ErrNotFound)

		n, err := m.Purge(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Zero(t, m.Len())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, m.Save(ctx, "sid-3", alice(now), time.Minute))
		require.NoError(t, m.Delete(ctx, "sid-3"))
		_, err := m.Get(ctx, "sid-3")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	signer, err := jwtx.NewHS256(testSecret, "pnpstation")
	require.NoError(t, err)
	store := NewMemoryStore()
	return NewManager(store, signer, Options{TTL: time.Hour}), store
}

func roundTrip(t *testing.T, m *Manager, cookie *http.Cookie) *Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	s, err := m.Load(req)
	require.NoError(t, err)
	return s
}

func TestManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no cookie is anonymous", func(t *testing.T) {
		m, _ := newManager(t)
		s := roundTrip(t, m, nil)
		require.Empty(t, s.ID)
		require.Equal(t, domain.PhaseAnonymous, s.State.Phase)
	})

	t.Run("save then load", func(t *testing.T) {
		m, _ := newManager(t)
		s := &Session{State: alice(time.Now())}

		rec := httptest.NewRecorder()
		require.NoError(t, m.Save(ctx, rec, s, false))
		require.NotEmpty(t, s.ID)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.True(t, cookies[0].HttpOnly)

		loaded := roundTrip(t, m, cookies[0])
		require.Equal(t, s.ID, loaded.ID)
		require.True(t, loaded.State.IsAuthenticated())
	})

	t.Run("rotate replaces the id", func(t *testing.T) {
		m, store := newManager(t)
		s := &Session{State: domain.Anonymous(time.Now())}
		require.NoError(t, m.Save(ctx, httptest.NewRecorder(), s, false))
		old := s.ID

		s.State = alice(time.Now())
		require.NoError(t, m.Save(ctx, httptest.NewRecorder(), s, true))
		require.NotEqual(t, old, s.ID)

		_, err := store.Get(ctx, old)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("forged cookie is anonymous", func(t *testing.T) {
		m, _ := newManager(t)
		other, err := jwtx.NewHS256([]byte("another-secret-another-secret-xx"), "pnpstation")
		require.NoError(t, err)

		token, err := other.Sign(jwtx.NewSessionClaims("sid", "pnpstation", time.Hour, time.Now()))
		require.NoError(t, err)

		s := roundTrip(t, m, &http.Cookie{Name: DefaultCookieName, Value: token})
		require.Empty(t, s.ID)
		require.Equal(t, domain.PhaseAnonymous, s.State.Phase)
	})

	t.Run("destroy clears cookie and state", func(t *testing.T) {
		m, store := newManager(t)
		s := &Session{State: alice(time.Now())}
		rec := httptest.NewRecorder()
		require.NoError(t, m.Save(ctx, rec, s, false))
		id := s.ID

		rec = httptest.NewRecorder()
		require.NoError(t, m.Destroy(ctx, rec, s))
		require.Empty(t, s.ID)
		require.Equal(t, domain.PhaseAnonymous, s.State.Phase)
		require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

		_, err := store.Get(ctx, id)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
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
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client)
	require.NoError(t, s.Ping(ctx))

	state := alice(time.Now().UTC().Truncate(time.Second))
	require.NoError(t, s.Save(ctx, "sid-1", state, time.Minute))

	got, err := s.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, state.UserID, got.UserID)
	require.Equal(t, state.Role, got.Role)
	require.True(t, state.Since.Equal(got.Since))

	ttl, err := client.TTL(ctx, redisKey("sid-1")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, "sid-1"))
	_, err = s.Get(ctx, "sid-1")
	require.ErrorIs(t, err, ErrNotFound)
}
