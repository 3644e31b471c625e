package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/pquerna/otp"
)

const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as base64url without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the SHA-256 of token, base64url encoded. Session ids are
// stored under their fingerprint so a dump of the session backend holds no
// usable cookies.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// MaxDigits bounds RandomDigits so the value fits the int32 that otp.Digits formats.
const MaxDigits = 9

// RandomDigits draws a number uniformly from [0, 10^n) with crypto/rand and
// renders it zero padded to exactly n digits.
func RandomDigits(n int) (string, error) {
	if n <= 0 || n > MaxDigits {
		return "", fmt.Errorf("digit count must be in 1..%d, got %d", MaxDigits, n)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to draw random digits: %w", err)
	}

	return otp.Digits(n).Format(int32(v.Int64())), nil // #nosec G115 - bounded by MaxDigits
}
