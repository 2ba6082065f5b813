package goShield

import (
	"errors"
	"time"

	"github.com/MrEthical07/goShield/csrf"
	"github.com/MrEthical07/goShield/internal/rate"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goShield APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client
	store  rate.BucketStore

	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret sets the CSRF server secret without replacing the rest of the
// configuration.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.CSRF.Secret = cloneBytes(secret)
	return b
}

// WithRedis switches both the rate-limit buckets and the diagnostic token
// counter to the given Redis client, the shared-state option for running
// behind a load balancer. Without it the engine is process-local.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithBucketStore injects a custom bucket store. Takes precedence over
// WithRedis for admission state.
func (b *Builder) WithBucketStore(store rate.BucketStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the time source. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the [Engine]. Configuration
// problems — a missing secret, no policies, a bad policy — fail here so a
// misconfigured process never starts with protection silently disabled.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	codec, err := csrf.NewCodec(csrf.Config{
		Secret: cfg.CSRF.Secret,
		TTL:    cfg.CSRF.TokenTTL,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	// -------- BUCKET STORE --------
	store := b.store
	if store == nil {
		if b.redis != nil {
			store = rate.NewRedisStore(b.redis)
		} else {
			store = rate.NewMemoryStore(cfg.RateLimit.SweepInterval)
		}
	}

	// A typed nil *redis.Client must not become a non-nil interface inside
	// the token store.
	var tokenClient redis.UniversalClient
	if b.redis != nil {
		tokenClient = b.redis
	}

	policies := make(map[string]rate.Policy, len(cfg.RateLimit.Policies))
	for _, p := range cfg.RateLimit.Policies {
		policies[p.Name] = rate.Policy{
			Name:   p.Name,
			Limit:  p.Limit,
			Window: p.Window,
		}
	}

	engine := &Engine{
		config:   cfg,
		codec:    codec,
		limiter:  rate.NewLimiter(store),
		store:    store,
		policies: policies,
		tokens:   newTokenStore(tokenClient, "gs"),
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		now:      now,
	}

	b.built = true

	return engine, nil
}
