package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared-counter BucketStore for multi-instance deployments.
// Counters are plain Redis keys; window lifetime is carried by the key TTL, so
// no sweeper is needed — Redis evicts elapsed windows itself.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: client}
}

// Incr describes the incr operation and its observable behavior.
//
// Incr may return an error when input validation, dependency calls, or security checks fail.
// Incr does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := s.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return count, window, nil
	}

	remaining, err := s.redis.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if remaining < 0 {
		// Key lost its TTL (or expired between INCR and PTTL); treat the
		// full window as remaining rather than admitting unbounded.
		remaining = window
	}

	return count, remaining, nil
}

// Remove describes the remove operation and its observable behavior.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
// Remove does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
