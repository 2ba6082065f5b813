package goShield

import "time"

// AnonymousSession is the identity assigned when neither a session cookie nor
// a client id header is present and the anonymous fallback is enabled.
const AnonymousSession = "anonymous"

// FailKind is the structured reason a gate rejected a request. It is carried
// to audit sinks and metrics; at the HTTP boundary every CSRF kind collapses
// into one 403 so clients get no oracle about which sub-check failed.
type FailKind uint8

const (
	// FailNone is an exported constant or variable used by the admission engine.
	FailNone FailKind = iota
	// FailRateLimited is an exported constant or variable used by the admission engine.
	FailRateLimited
	// FailCSRFMissing is an exported constant or variable used by the admission engine.
	FailCSRFMissing
	// FailCSRFMalformed is an exported constant or variable used by the admission engine.
	FailCSRFMalformed
	// FailCSRFExpired is an exported constant or variable used by the admission engine.
	FailCSRFExpired
	// FailCSRFMismatch is an exported constant or variable used by the admission engine.
	FailCSRFMismatch
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k FailKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailRateLimited:
		return "rate_limited"
	case FailCSRFMissing:
		return "csrf_missing"
	case FailCSRFMalformed:
		return "csrf_malformed"
	case FailCSRFExpired:
		return "csrf_expired"
	case FailCSRFMismatch:
		return "csrf_mismatch"
	default:
		return "unknown"
	}
}

// AdmitResult is returned by [Engine.Admit].
type AdmitResult struct {
	Admitted  bool
	Count     int64
	Remaining int64
	// RetryAfter is how long the client must wait for a fresh window.
	// Meaningful only when Admitted is false.
	RetryAfter time.Duration
}

// GateRequest is the input to [Engine.Gate]: everything the pipeline needs to
// run its checks, already extracted from the transport by middleware.
type GateRequest struct {
	PolicyName  string
	IdentityKey string
	SessionID   string
	Token       string
	// Mutation marks state-changing methods (POST/PUT/PATCH/DELETE).
	Mutation bool
	// CSRFProtected marks routes declared as CSRF-protected by the caller.
	CSRFProtected bool
}

// Decision is the terminal outcome of the gate state machine:
// admitted, Rejected(429), or Rejected(403).
type Decision struct {
	Allowed bool
	// Status is 0 when allowed, otherwise the HTTP status the boundary
	// must answer with (429 or 403).
	Status     int
	Kind       FailKind
	RetryAfter time.Duration
}

// Err maps a rejection to its package sentinel, so callers that prefer error
// flow over inspecting the struct can use errors.Is. Allowed decisions map to
// nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Kind {
	case FailNone:
		return nil
	case FailRateLimited:
		return ErrRateLimited
	case FailCSRFMissing:
		return ErrCSRFMissing
	case FailCSRFMalformed:
		return ErrCSRFMalformed
	case FailCSRFExpired:
		return ErrCSRFExpired
	default:
		return ErrCSRFMismatch
	}
}

// IdentityKey derives the rate-limit bucket identity from the session id and
// client IP: session identity when present, client IP otherwise, and the
// shared anonymous identity as the last resort.
func IdentityKey(sessionID, clientIP string) string {
	if sessionID != "" && sessionID != AnonymousSession {
		return "session:" + sessionID
	}
	if clientIP != "" {
		return "ip:" + clientIP
	}
	return AnonymousSession
}
