// Package rate provides internal primitives for fixed-window admission control:
// the bucket store contract, an in-process sharded store, a Redis-backed store,
// and the policy limiter goShield builds its gate on.
//
// # Window semantics
//
// Fixed-window counters keyed "rl:<policy>:<identityKey>". The first hit in a
// window starts it (count = 1); subsequent hits increment until the window
// elapses, after which the next hit starts a fresh window. Adjacent windows
// can admit up to 2×limit in a burst straddling the boundary; callers that
// need stricter shaping must size Limit accordingly.
//
// On the Redis store this is INCR + conditional EXPIRE on first hit, the
// shared-counter alternative for multi-instance deployments. On the memory
// store it is a per-shard mutex around a read-check-increment.
//
// # What this package must NOT do
//
//   - Decide HTTP status codes or policies (those live in the goShield root).
//   - Be imported outside the goShield module.
package rate
