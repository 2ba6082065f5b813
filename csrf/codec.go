package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// MinSecretSize is the smallest accepted HMAC key length in bytes.
	MinSecretSize = 16

	digestSize      = sha256.Size
	defaultTTL      = 24 * time.Hour
	defaultMaxSkew  = 5 * time.Minute
	tokenSeparator  = "."
	macFieldDivider = "|"
)

var (
	// ErrMalformed is an exported constant or variable used by the admission engine.
	ErrMalformed = errors.New("token malformed")
	// ErrExpired is an exported constant or variable used by the admission engine.
	ErrExpired = errors.New("token expired")
	// ErrMismatch is an exported constant or variable used by the admission engine.
	ErrMismatch = errors.New("token mismatch")
	// ErrSecretTooShort is an exported constant or variable used by the admission engine.
	ErrSecretTooShort = errors.New("secret too short")
)

// Config defines a public type used by goShield APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	TTL    time.Duration
	// MaxSkew bounds how far in the future an embedded timestamp may sit before
	// the token is rejected as malformed. Zero applies the 5 minute default.
	MaxSkew time.Duration
	// Now is the time source. Nil means time.Now. Injected by tests.
	Now func() time.Time
}

// Codec derives and verifies session-bound anti-forgery tokens. All methods are
// safe for concurrent use; Rotate swaps the secret atomically under live traffic.
type Codec struct {
	secret  atomic.Pointer[[]byte]
	ttl     time.Duration
	maxSkew time.Duration
	now     func() time.Time
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinSecretSize {
		return nil, ErrSecretTooShort
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxSkew := cfg.MaxSkew
	if maxSkew <= 0 {
		maxSkew = defaultMaxSkew
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Codec{
		ttl:     ttl,
		maxSkew: maxSkew,
		now:     now,
	}
	secret := cloneSecret(cfg.Secret)
	c.secret.Store(&secret)

	return c, nil
}

// TTL describes the ttl operation and its observable behavior.
//
// TTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue derives a token for the given session id at the current time. The same
// (session id, secret, timestamp) always yields the same token.
func (c *Codec) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrMalformed
	}
	return c.issueAt(sessionID, c.now().UnixMilli()), nil
}

// Verify recomputes the expected digest for the submitted token's timestamp and
// compares it in constant time. Failures are typed: [ErrMalformed] when the token
// does not parse, [ErrExpired] when the embedded timestamp is older than TTL, and
// [ErrMismatch] when the digest does not match.
func (c *Codec) Verify(sessionID, token string) error {
	tsPart, digestPart, found := strings.Cut(token, tokenSeparator)
	if !found || tsPart == "" || digestPart == "" {
		return ErrMalformed
	}

	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil || ts <= 0 {
		return ErrMalformed
	}

	submitted, err := base64.RawURLEncoding.DecodeString(digestPart)
	if err != nil || len(submitted) != digestSize {
		return ErrMalformed
	}

	now := c.now()
	if ts > now.Add(c.maxSkew).UnixMilli() {
		return ErrMalformed
	}
	if now.UnixMilli()-ts > c.ttl.Milliseconds() {
		return ErrExpired
	}

	expected := c.digest(sessionID, tsPart)
	if !hmac.Equal(expected, submitted) {
		return ErrMismatch
	}

	return nil
}

// Rotate replaces the server secret. Every token issued under the previous secret
// fails verification with [ErrMismatch] from this point on.
func (c *Codec) Rotate(newSecret []byte) error {
	if len(newSecret) < MinSecretSize {
		return ErrSecretTooShort
	}
	secret := cloneSecret(newSecret)
	c.secret.Store(&secret)
	return nil
}

// RotateRandom rotates to a fresh 32-byte secret from crypto/rand.
//
// RotateRandom may return an error when input validation, dependency calls, or security checks fail.
func (c *Codec) RotateRandom() error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	c.secret.Store(&secret)
	return nil
}

func (c *Codec) issueAt(sessionID string, tsMillis int64) string {
	tsPart := strconv.FormatInt(tsMillis, 10)
	digest := c.digest(sessionID, tsPart)
	return tsPart + tokenSeparator + base64.RawURLEncoding.EncodeToString(digest)
}

func (c *Codec) digest(sessionID, tsPart string) []byte {
	secret := *c.secret.Load()

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte(macFieldDivider))
	mac.Write([]byte(tsPart))
	return mac.Sum(nil)
}

func cloneSecret(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
