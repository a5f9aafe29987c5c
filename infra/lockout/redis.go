package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obiora/bankcore/pkg/security"
)

// RedisStore tracks PIN failures in Redis so lockout state survives restarts
// and is shared across instances.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed lockout store from a connection URL.
func NewRedisStore(url, keyPrefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("lockout store: invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("lockout store: connection failed: %w", err)
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisStore) key(accountNumber string) string {
	return s.keyPrefix + "lockout:" + accountNumber
}

// Failures implements security.LockoutStore.
func (s *RedisStore) Failures(ctx context.Context, accountNumber string) (int, error) {
	n, err := s.client.Get(ctx, s.key(accountNumber)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RecordFailure implements security.LockoutStore. The expiry is refreshed on
// every failure so the window counts from the last attempt.
func (s *RedisStore) RecordFailure(ctx context.Context, accountNumber string, window time.Duration) (int, error) {
	key := s.key(accountNumber)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// Reset implements security.LockoutStore.
func (s *RedisStore) Reset(ctx context.Context, accountNumber string) error {
	return s.client.Del(ctx, s.key(accountNumber)).Err()
}

var _ security.LockoutStore = (*RedisStore)(nil)
