package goShield

import "errors"

var (
	// ErrRateLimited is an exported constant or variable used by the admission engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrCSRFMissing is an exported constant or variable used by the admission engine.
	ErrCSRFMissing = errors.New("csrf token missing")
	// ErrCSRFMalformed is an exported constant or variable used by the admission engine.
	ErrCSRFMalformed = errors.New("csrf token malformed")
	// ErrCSRFExpired is an exported constant or variable used by the admission engine.
	ErrCSRFExpired = errors.New("csrf token expired")
	// ErrCSRFMismatch is an exported constant or variable used by the admission engine.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrUnknownPolicy is an exported constant or variable used by the admission engine.
	ErrUnknownPolicy = errors.New("unknown rate limit policy")
	// ErrSecretRequired is an exported constant or variable used by the admission engine.
	ErrSecretRequired = errors.New("csrf secret required")
	// ErrStoreUnavailable is an exported constant or variable used by the admission engine.
	ErrStoreUnavailable = errors.New("bucket store unavailable")
	// ErrRevocationUnavailable is an exported constant or variable used by the admission engine.
	ErrRevocationUnavailable = errors.New("revocation backend unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the admission engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
