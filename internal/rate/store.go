package rate

import (
	"context"
	"time"
)

// BucketStore is the counter contract the limiter runs against. Incr performs
// one atomic read-check-increment for the bucket at key: it starts a fresh
// window when none is active, otherwise increments the current one. It returns
// the post-increment count and the time remaining in the active window.
//
// Implementations must serialize increments for the same key; increments for
// different keys must not contend on a single lock.
type BucketStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
	Remove(ctx context.Context, key string) error
}
