package goShield

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by goShield APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	CSRF      CSRFConfig
	Cookie    CookieConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CSRF CONFIG
====================================
*/

// CSRFConfig defines a public type used by goShield APIs.
//
// CSRFConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CSRFConfig struct {
	// Secret is the server-side HMAC key. It is never logged or transmitted
	// and there is no default: Build fails without one.
	Secret   []byte
	TokenTTL time.Duration
	// HeaderName is the request header carrying the submitted token.
	// Tokens are never read from the request body.
	HeaderName string
	// ClientIDHeader is the fallback session source when no cookie is present.
	ClientIDHeader string
	// AllowAnonymous keeps the literal anonymous identity fallback when
	// neither cookie nor header is present. Disabling it turns such
	// requests into CSRF failures.
	AllowAnonymous bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by goShield APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	// MaxAge defaults to the token TTL when zero. The cookie is always httpOnly.
	MaxAge time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// Policy is a named fixed-window admission budget, referenced by name from
// route declarations.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimitConfig defines a public type used by goShield APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Policies []Policy
	// SweepInterval drives the memory store's background sweep of stale
	// buckets. Zero disables the ticker; opportunistic sweeps still run.
	// Ignored by the Redis store, where TTLs do the eviction.
	SweepInterval time.Duration
}

// AuditConfig defines a public type used by goShield APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// EmitAdmitted forwards successful gate outcomes too, not only rejections.
	EmitAdmitted bool
}

// MetricsConfig defines a public type used by goShield APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. The CSRF secret is left
// empty on purpose; supplying one is the caller's job and Build enforces it.
func DefaultConfig() Config {
	return Config{
		CSRF: CSRFConfig{
			TokenTTL:       24 * time.Hour,
			HeaderName:     "X-CSRF-Token",
			ClientIDHeader: "X-Client-Id",
			AllowAnonymous: true,
		},
		Cookie: CookieConfig{
			Name:     "csrf-session-id",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		RateLimit: RateLimitConfig{
			Policies: []Policy{
				{Name: "api", Limit: 100, Window: time.Minute},
				{Name: "auth", Limit: 10, Window: time.Minute},
			},
			SweepInterval: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.CSRF.Secret = cloneBytes(cfg.CSRF.Secret)
	out.RateLimit.Policies = make([]Policy, len(cfg.RateLimit.Policies))
	copy(out.RateLimit.Policies, cfg.RateLimit.Policies)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// CSRF
	if len(c.CSRF.Secret) == 0 {
		return ErrSecretRequired
	}
	if len(c.CSRF.Secret) < 16 {
		return errors.New("CSRF Secret must be >= 16 bytes")
	}
	if c.CSRF.TokenTTL <= 0 {
		return errors.New("CSRF TokenTTL must be > 0")
	}
	if c.CSRF.HeaderName == "" {
		return errors.New("CSRF HeaderName must not be empty")
	}

	// Cookie
	if c.Cookie.Name == "" {
		return errors.New("Cookie Name must not be empty")
	}
	if c.Cookie.MaxAge < 0 {
		return errors.New("Cookie MaxAge must be >= 0")
	}

	// Rate limit policies
	if len(c.RateLimit.Policies) == 0 {
		return errors.New("RateLimit requires at least one policy")
	}
	if c.RateLimit.SweepInterval < 0 {
		return errors.New("RateLimit SweepInterval must be >= 0")
	}

	seen := make(map[string]struct{}, len(c.RateLimit.Policies))
	for _, p := range c.RateLimit.Policies {
		if p.Name == "" {
			return errors.New("RateLimit policy name must not be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return errors.New("RateLimit policy " + p.Name + " declared twice")
		}
		seen[p.Name] = struct{}{}

		if p.Limit <= 0 {
			return errors.New("RateLimit policy " + p.Name + " Limit must be > 0")
		}
		if p.Window <= 0 {
			return errors.New("RateLimit policy " + p.Name + " Window must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
