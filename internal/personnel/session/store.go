// Package session keeps the typed auth state of a browser session on the
// server and ties it to the client through a signed cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

var ErrNotFound = errors.New("session: not found")

// Store persists auth state under an opaque session id. Implementations key
// entries by the fingerprint of the id, never the id itself.
type Store interface {
	Get(ctx context.Context, id string) (domain.AuthState, error)
	Save(ctx context.Context, id string, state domain.AuthState, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
