package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC key we accept.
const MinSecretLength = 32

// HS256 signs and verifies session cookies with a shared secret. Only this
// service ever reads the cookie, so asymmetric keys buy nothing here.
type HS256 struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewHS256 returns a signer/verifier for secret.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwtx: secret must be at least %d bytes", MinSecretLength)
	}
	return &HS256{
		key:    secret,
		issuer: issuer,
		leeway: 30 * time.Second,
		now:    time.Now,
	}, nil
}

// Issuer is the iss value written into new claims.
func (h *HS256) Issuer() string { return h.issuer }

// Sign returns the compact JWT for claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	if claims.SID == "" {
		return "", ErrMissingSID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.key)
}

// Verify parses token, checks the signature, issuer and time bounds and
// returns the claims.
func (h *HS256) Verify(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrMalformed
		}
		return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(h.now().UTC(), h.leeway); err != nil {
		return nil, err
	}
	if claims.SID == "" {
		return nil, ErrMissingSID
	}
	return claims, nil
}
