package session

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
)

type memoryEntry struct {
	state     domain.AuthState
	expiresAt time.Time
}

// MemoryStore is the single instance backend. Expired entries are invisible
// to Get and removed by Purge.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (domain.AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[cryptox.FingerprintToken(id)]
	if !ok || !m.now().Before(e.expiresAt) {
		return domain.AuthState{}, ErrNotFound
	}
	return e.state, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, state domain.AuthState, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[cryptox.FingerprintToken(id)] = memoryEntry{state: state, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, cryptox.FingerprintToken(id))
	return nil
}

// Purge drops expired entries and reports how many went.
func (m *MemoryStore) Purge(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len is the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
