package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists session records as JSON values with a real TTL, so
// expiry needs no sweeper and survives process restarts. Keys are
// prefixed to share a Redis instance with other services.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. The TTL should be the timeout
// monitor's full expiry window; Put and Touch both re-arm it, which is
// exactly the "activity in any tab resets the shared clock" behaviour.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "wizard:session:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Get fetches and decodes the record.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &rec, nil
}

// Put stores the record and re-arms its TTL.
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(rec.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Delete removes the record; missing keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// Health pings the backing Redis.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
