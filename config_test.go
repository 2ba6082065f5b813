package goShield

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.CSRF.Secret) != 0 {
		t.Fatal("default config must not ship a secret")
	}
	if cfg.CSRF.TokenTTL != 24*time.Hour {
		t.Fatalf("token TTL = %v, want 24h", cfg.CSRF.TokenTTL)
	}
	if cfg.CSRF.HeaderName != "X-CSRF-Token" {
		t.Fatalf("header name = %q", cfg.CSRF.HeaderName)
	}
	if !cfg.CSRF.AllowAnonymous {
		t.Fatal("anonymous fallback disabled by default")
	}
	if cfg.Cookie.Name != "csrf-session-id" || !cfg.Cookie.Secure || cfg.Cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie defaults %+v", cfg.Cookie)
	}
	if len(cfg.RateLimit.Policies) != 2 {
		t.Fatalf("expected 2 default policies, got %d", len(cfg.RateLimit.Policies))
	}
}

func TestBuildRequiresSecret(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithConfig(testConfig())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.CSRF.Secret = []byte("short") },
			wantErr: "Secret",
		},
		{
			name:    "zero ttl",
			mutate:  func(c *Config) { c.CSRF.TokenTTL = 0 },
			wantErr: "TokenTTL",
		},
		{
			name:    "empty header",
			mutate:  func(c *Config) { c.CSRF.HeaderName = "" },
			wantErr: "HeaderName",
		},
		{
			name:    "empty cookie name",
			mutate:  func(c *Config) { c.Cookie.Name = "" },
			wantErr: "Cookie Name",
		},
		{
			name:    "no policies",
			mutate:  func(c *Config) { c.RateLimit.Policies = nil },
			wantErr: "at least one policy",
		},
		{
			name: "duplicate policy",
			mutate: func(c *Config) {
				c.RateLimit.Policies = append(c.RateLimit.Policies, c.RateLimit.Policies[0])
			},
			wantErr: "declared twice",
		},
		{
			name: "zero limit",
			mutate: func(c *Config) {
				c.RateLimit.Policies = []Policy{{Name: "api", Limit: 0, Window: time.Minute}}
			},
			wantErr: "Limit",
		},
		{
			name: "zero window",
			mutate: func(c *Config) {
				c.RateLimit.Policies = []Policy{{Name: "api", Limit: 5, Window: 0}}
			},
			wantErr: "Window",
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantErr: "BufferSize",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateMissingSecretSentinel(t *testing.T) {
	cfg := testConfig()
	cfg.CSRF.Secret = nil

	if err := cfg.Validate(); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestWithConfigCopiesInput(t *testing.T) {
	cfg := testConfig()
	b := New().WithConfig(cfg)

	// Mutating the caller's copy after handing it over must not leak into
	// the engine.
	cfg.CSRF.Secret[0] ^= 0xFF
	cfg.RateLimit.Policies[0].Limit = 9999

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	p, ok := engine.Policy("api")
	if !ok || p.Limit != 3 {
		t.Fatalf("policy limit = %d, want 3", p.Limit)
	}
}

func TestCookieMaxAgeDefaultsToTokenTTL(t *testing.T) {
	engine, _ := newTestEngine(t)

	if got := engine.Cookie().MaxAge; got != 24*time.Hour {
		t.Fatalf("cookie max age = %v, want token TTL", got)
	}
}
