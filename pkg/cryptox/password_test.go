package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	SetPepper("test-pepper")
	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "contraseña🔒"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, VerifyPassword(tt.password, hash))
			require.ErrorIs(t, VerifyPassword(tt.password+"x", hash), ErrPasswordMismatch)
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.NoError(t, VerifyPassword("samepassword", h1))
	require.NoError(t, VerifyPassword("samepassword", h2))
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want error
	}{
		{"empty hash", "", ErrUnsupportedHash},
		{"scrypt hash", "$scrypt$ln=16,r=8,p=1$c2FsdA$aGFzaA", ErrUnsupportedHash},
		{"missing parts", "$argon2id$v=19$m=19456", nil},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA", nil},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA", nil},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword("test-password", tt.hash)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestVerifyPassword_PepperMatters(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	SetPepper("another-pepper")
	defer SetPepper("test-pepper")

	require.ErrorIs(t, VerifyPassword("password123", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	legacy := string(raw)

	require.NoError(t, VerifyPassword("password123", legacy))
	require.ErrorIs(t, VerifyPassword("password124", legacy), ErrPasswordMismatch)
	require.True(t, NeedsRehash(legacy))
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("pw")
	require.NoError(t, err)
	require.False(t, NeedsRehash(current))

	weaker := strings.Replace(current, "m=19456,t=2", "m=4096,t=1", 1)
	require.True(t, NeedsRehash(weaker))
	require.True(t, NeedsRehash("garbage"))
}

func TestDummyVerify(t *testing.T) {
	// Only needs to not panic and to be callable concurrently
	done := make(chan struct{})
	for range 4 {
		go func() {
			DummyVerify("whatever")
			done <- struct{}{}
		}()
	}
	for range 4 {
		<-done
	}
}

func TestLoadPepperFile(t *testing.T) {
	defer SetPepper("test-pepper")

	path := filepath.Join(t.TempDir(), "nested", "pepper")

	require.NoError(t, LoadPepperFile(path))
	first := Pepper()
	require.NotEmpty(t, first)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, string(b))

	// Second load reads the persisted value back
	SetPepper("")
	require.NoError(t, LoadPepperFile(path))
	require.Equal(t, first, Pepper())
}
