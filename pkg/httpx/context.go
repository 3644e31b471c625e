package httpx

import (
	"context"
	"strconv"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// WithIdentity returns a child context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the caller identity if the request is authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}

func userIDString(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return strconv.FormatInt(id.UserID, 10)
	}
	return ""
}
