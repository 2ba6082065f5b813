package rate

import (
	"context"
	"time"
)

const keyPrefix = "rl"

// Policy is a named fixed-window budget: at most Limit admissions per Window
// for each identity key.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Count     int64
	Remaining int64
	// RetryAfter is how long the caller must wait for a fresh window.
	// Meaningful only when Allowed is false.
	RetryAfter time.Duration
}

// Limiter applies named policies against a [BucketStore]. It holds no state of
// its own; correctness under concurrency comes from the store's atomic Incr.
type Limiter struct {
	store BucketStore
}

// NewLimiter creates a [Limiter] backed by the given store.
func NewLimiter(store BucketStore) *Limiter {
	return &Limiter{store: store}
}

// Admit checks the (policy, identityKey) bucket and admits or rejects the
// request. Rejections carry a positive RetryAfter; store failures surface as
// ErrStoreUnavailable-wrapped errors and never silently admit.
func (l *Limiter) Admit(ctx context.Context, policy Policy, identityKey string) (Result, error) {
	count, remaining, err := l.store.Incr(ctx, bucketKey(policy.Name, identityKey), policy.Window)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Count: count,
	}

	limit := int64(policy.Limit)
	if count <= limit {
		res.Allowed = true
		res.Remaining = limit - count
		return res, nil
	}

	res.RetryAfter = remaining
	if res.RetryAfter <= 0 {
		res.RetryAfter = policy.Window
	}
	return res, nil
}

func bucketKey(policyName, identityKey string) string {
	return keyPrefix + ":" + policyName + ":" + identityKey
}
