package goShield

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

const tokenIssuedKey = "csrf:issued"

// tokenStore is the diagnostic/revocation layer over the stateless codec. It
// only counts issuances for operational visibility; validation never touches
// it, and its absence would not break correctness.
type tokenStore struct {
	redis  redis.UniversalClient
	prefix string
	local  atomic.Int64
}

func newTokenStore(redisClient redis.UniversalClient, prefix string) *tokenStore {
	return &tokenStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *tokenStore) key() string {
	return s.prefix + ":" + tokenIssuedKey
}

// RecordIssued describes the recordissued operation and its observable behavior.
//
// RecordIssued may return an error when input validation, dependency calls, or security checks fail.
// RecordIssued does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *tokenStore) RecordIssued(ctx context.Context) error {
	if s.redis == nil {
		s.local.Add(1)
		return nil
	}

	if err := s.redis.Incr(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

// Count describes the count operation and its observable behavior.
//
// Count may return an error when input validation, dependency calls, or security checks fail.
// Count does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *tokenStore) Count(ctx context.Context) (int64, error) {
	if s.redis == nil {
		return s.local.Load(), nil
	}

	count, err := s.redis.Get(ctx, s.key()).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return count, nil
}

// Reset describes the reset operation and its observable behavior.
//
// Reset may return an error when input validation, dependency calls, or security checks fail.
// Reset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *tokenStore) Reset(ctx context.Context) error {
	if s.redis == nil {
		s.local.Store(0)
		return nil
	}

	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}
