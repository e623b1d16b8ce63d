package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ErrNoCredential is returned when no live credential exists for an email.
// Expired credentials are indistinguishable from never-issued ones.
var ErrNoCredential = errors.New("no pending credential")

// Store keeps at most one live PendingCredential per email. Expiry is the
// store's job: callers never re-check timestamps, records simply vanish.
type Store interface {
	Put(ctx context.Context, cred PendingCredential, ttl time.Duration) error
	Get(ctx context.Context, email string) (PendingCredential, error)
	Delete(ctx context.Context, email string) error
}

const keyPrefix = "otp:v1:"

// RedisStore persists pending credentials in Redis, one key per email, with
// the expiry window mapped onto the key TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed pending credential store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, cred PendingCredential, ttl time.Duration) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode pending credential: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+cred.Email, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store pending credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (PendingCredential, error) {
	payload, err := s.client.Get(ctx, keyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingCredential{}, ErrNoCredential
	}
	if err != nil {
		return PendingCredential{}, fmt.Errorf("load pending credential: %w", err)
	}
	var cred PendingCredential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return PendingCredential{}, fmt.Errorf("decode pending credential: %w", err)
	}
	return cred, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, keyPrefix+email).Err()
}
