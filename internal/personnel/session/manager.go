package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/aussiebroadwan/pnpstation/pkg/jwtx"
	"github.com/aussiebroadwan/pnpstation/pkg/slogx"
)

const DefaultCookieName = "pnp_session"

// Session is the state loaded for one request. ID is empty until the session
// is first saved.
type Session struct {
	ID    string
	State domain.AuthState
}

// Manager loads and saves sessions for HTTP requests. The cookie is an HS256
// JWT whose sid claim names the server side entry.
type Manager struct {
	store      Store
	signer     *jwtx.HS256
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

type Options struct {
	TTL        time.Duration
	CookieName string
	Secure     bool
}

func NewManager(store Store, signer *jwtx.HS256, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	return &Manager{
		store:      store,
		signer:     signer,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		now:        time.Now,
	}
}

func (m *Manager) Store() Store { return m.store }

// Load returns the session for r. A missing, forged or expired cookie gives
// a fresh anonymous session; only backend failures are errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	anon := &Session{State: domain.Anonymous(m.now().UTC())}

	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return anon, nil
	}

	claims, err := m.signer.Verify(c.Value)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("session cookie rejected", "error", err)
		return anon, nil
	}

	state, err := m.store.Get(r.Context(), claims.SID)
	if errors.Is(err, ErrNotFound) {
		return anon, nil
	}
	if err != nil {
		return nil, err
	}
	return &Session{ID: claims.SID, State: state}, nil
}

// Save persists s and writes the cookie. When rotate is set, or the session
// has no id yet, a new id replaces the old one so a pre-login cookie never
// becomes an authenticated one.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session, rotate bool) error {
	if rotate && s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
		s.ID = ""
	}
	if s.ID == "" {
		id, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		s.ID = id
	}

	if err := m.store.Save(ctx, s.ID, s.State, m.ttl); err != nil {
		return err
	}

	now := m.now().UTC()
	token, err := m.signer.Sign(jwtx.NewSessionClaims(s.ID, m.signer.Issuer(), m.ttl, now))
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy deletes the server side entry and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	s.ID = ""
	s.State = domain.Anonymous(m.now().UTC())

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Purger is implemented by backends that need an external sweep.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// LogValue keeps session ids out of logs.
func (s *Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("phase", string(s.State.Phase)),
		slog.Int64("user_id", s.State.UserID),
	)
}
