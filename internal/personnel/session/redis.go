package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/cryptox"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pnpstation:session:"

// RedisStore shares sessions between replicas. Redis expires entries itself.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + cryptox.FingerprintToken(id) }

func (r *RedisStore) Get(ctx context.Context, id string) (domain.AuthState, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AuthState{}, ErrNotFound
	}
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("failed to read session: %w", err)
	}

	var state domain.AuthState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.AuthState{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, state domain.AuthState, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks the redis connection for readiness probes.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
