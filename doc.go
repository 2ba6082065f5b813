// Package goShield provides request admission control for HTTP services: stateless
// CSRF tokens bound to a client session, and fixed-window rate limiting under named
// per-route policies, composed into a single gate that runs before business handlers.
//
// The package is designed for concurrent server workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goShield is the public surface. It exposes [Engine], [Builder], [Config], and value
// types (Decision, AdmitResult, MetricsSnapshot, etc.). Token encoding lives in the
// csrf subpackage; bucket stores and the fixed-window limiter live under internal/
// and are never exported.
//
// # What this package must NOT do
//
//   - Authenticate session identities. The session id is an opaque string supplied by
//     the caller's identity layer; goShield only binds tokens to it.
//   - Expose Redis clients, bucket stores, or token encoding details in its public API.
//   - Reveal to clients which CSRF sub-check failed. All CSRF failures surface as a
//     single 403; the structured kind is available only to audit sinks and metrics.
//
// # Performance contract
//
// Gate is the hot path. Token verification is pure computation (one HMAC), and bucket
// admission is a single atomic read-check-increment: one shard lock acquisition on the
// in-memory store, or one INCR round-trip on the Redis store. Nothing on the gate path
// blocks on I/O beyond that.
package goShield
