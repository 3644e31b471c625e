package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// Pepper returns the process wide pepper. Empty means no pepper is applied.
func Pepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}

// SetPepper replaces the pepper. Existing argon2id hashes stop verifying if
// it changes, so this is only meant for startup and tests.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// LoadPepperFile reads the pepper from path, generating and persisting a new
// one when the file does not exist yet.
func LoadPepperFile(path string) error {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		SetPepper(strings.TrimSpace(string(b)))
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create pepper dir: %w", err)
	}

	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
		return fmt.Errorf("failed to write pepper: %w", err)
	}
	SetPepper(p)
	return nil
}
