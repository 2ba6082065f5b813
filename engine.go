package goShield

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goShield/csrf"
	"github.com/MrEthical07/goShield/internal/rate"
)

// Engine defines a public type used by goShield APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	codec    *csrf.Codec
	limiter  *rate.Limiter
	store    rate.BucketStore
	policies map[string]rate.Policy
	tokens   *tokenStore
	audit    *auditDispatcher
	metrics  *Metrics
	now      func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if closer, ok := e.store.(interface{ Close() }); ok {
		closer.Close()
	}
}

/*
====================================
TOKEN OPERATIONS
====================================
*/

// IssueToken derives a fresh anti-forgery token bound to the given session
// identity. Issuance is recorded on the diagnostic token store; a recording
// failure does not block issuance.
func (e *Engine) IssueToken(ctx context.Context, sessionID string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}
	if sessionID == "" {
		if !e.config.CSRF.AllowAnonymous {
			return "", ErrCSRFMissing
		}
		sessionID = AnonymousSession
	}

	token, err := e.codec.Issue(sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSRFMalformed, err)
	}

	// Diagnostic only. The codec already issued; losing the count must not
	// turn into a client-visible failure.
	_ = e.tokens.RecordIssued(ctx)

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "token.issue",
		SessionID: sessionID,
		IP:        ClientIPFromContext(ctx),
		Success:   true,
	})

	return token, nil
}

// VerifyToken checks a submitted token against the session identity it claims
// to be bound to. Failures are typed: [ErrCSRFMissing], [ErrCSRFMalformed],
// [ErrCSRFExpired], or [ErrCSRFMismatch].
func (e *Engine) VerifyToken(ctx context.Context, sessionID, token string) error {
	kind, err := e.verifyToken(sessionID, token)

	success := err == nil
	e.metricInc(csrfMetric(kind))
	e.emitAuditOutcome(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "csrf.verify",
		SessionID: sessionID,
		IP:        ClientIPFromContext(ctx),
		Success:   success,
		ErrorKind: failKindLabel(kind),
	}, success)

	return err
}

func (e *Engine) verifyToken(sessionID, token string) (FailKind, error) {
	if e == nil || e.codec == nil {
		return FailCSRFMissing, ErrEngineNotReady
	}
	if token == "" {
		return FailCSRFMissing, ErrCSRFMissing
	}
	if sessionID == "" {
		if !e.config.CSRF.AllowAnonymous {
			return FailCSRFMismatch, ErrCSRFMismatch
		}
		sessionID = AnonymousSession
	}

	switch err := e.codec.Verify(sessionID, token); {
	case err == nil:
		return FailNone, nil
	case errors.Is(err, csrf.ErrExpired):
		return FailCSRFExpired, ErrCSRFExpired
	case errors.Is(err, csrf.ErrMismatch):
		return FailCSRFMismatch, ErrCSRFMismatch
	default:
		return FailCSRFMalformed, ErrCSRFMalformed
	}
}

// RevokeAll invalidates every outstanding token at once by rotating the server
// secret, then clears the diagnostic issuance counter. O(1) regardless of how
// many tokens are outstanding.
func (e *Engine) RevokeAll(ctx context.Context) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	if err := e.codec.RotateRandom(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if err := e.tokens.Reset(ctx); err != nil {
		return err
	}

	e.metricInc(MetricRevokeAll)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: e.now(),
		EventType: "token.revoke_all",
		Success:   true,
	})

	return nil
}

// TokenCount reports how many tokens have been issued since startup or the
// last revocation. Diagnostic only; validation does not consult it.
func (e *Engine) TokenCount(ctx context.Context) (int64, error) {
	if e == nil || e.tokens == nil {
		return 0, ErrEngineNotReady
	}
	return e.tokens.Count(ctx)
}

/*
====================================
ADMISSION
====================================
*/

// Admit runs one fixed-window admission check for (policyName, identityKey).
// Unknown policy names yield [ErrUnknownPolicy]; bucket store failures yield a
// wrapped [ErrStoreUnavailable] and never silently admit.
func (e *Engine) Admit(ctx context.Context, policyName, identityKey string) (AdmitResult, error) {
	if e == nil || e.limiter == nil {
		return AdmitResult{}, ErrEngineNotReady
	}

	policy, ok := e.policies[policyName]
	if !ok {
		return AdmitResult{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policyName)
	}
	if identityKey == "" {
		identityKey = AnonymousSession
	}

	res, err := e.limiter.Admit(ctx, policy, identityKey)
	if err != nil {
		e.metricInc(MetricStoreError)
		return AdmitResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	out := AdmitResult{
		Admitted:   res.Allowed,
		Count:      res.Count,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}

	if out.Admitted {
		e.metricInc(MetricAdmitAllowed)
	} else {
		e.metricInc(MetricAdmitRejected)
		e.emitAudit(ctx, AuditEvent{
			Timestamp:   e.now(),
			EventType:   "ratelimit.reject",
			IdentityKey: identityKey,
			Policy:      policyName,
			IP:          ClientIPFromContext(ctx),
			Success:     false,
			ErrorKind:   FailRateLimited.String(),
		})
	}

	return out, nil
}

// Policy reports whether a named policy is declared, for registration-time
// validation of route declarations.
func (e *Engine) Policy(name string) (Policy, bool) {
	if e == nil {
		return Policy{}, false
	}
	p, ok := e.policies[name]
	if !ok {
		return Policy{}, false
	}
	return Policy{Name: p.Name, Limit: p.Limit, Window: p.Window}, true
}

/*
====================================
GATE (request pipeline)
====================================
*/

// Gate runs the per-request state machine:
//
//	Received → RateLimitCheck → {Rejected(429) | CSRFCheck} → {Rejected(403) | Admitted}.
//
// The rate limit always runs first; the CSRF check runs only for mutation
// methods on protected routes. A rejection is final for this request — there
// are no retries inside the gate.
func (e *Engine) Gate(ctx context.Context, req GateRequest) (Decision, error) {
	if e == nil || e.limiter == nil {
		return Decision{}, ErrEngineNotReady
	}

	started := e.now()
	defer func() {
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricGateLatency, e.now().Sub(started))
		}
	}()

	admit, err := e.Admit(ctx, req.PolicyName, req.IdentityKey)
	if err != nil {
		return Decision{}, err
	}
	if !admit.Admitted {
		return Decision{
			Status:     http.StatusTooManyRequests,
			Kind:       FailRateLimited,
			RetryAfter: admit.RetryAfter,
		}, nil
	}

	if req.Mutation && req.CSRFProtected {
		kind, verr := e.verifyToken(req.SessionID, req.Token)
		e.metricInc(csrfMetric(kind))
		if verr != nil {
			e.emitAudit(ctx, AuditEvent{
				Timestamp:   e.now(),
				EventType:   "csrf.reject",
				SessionID:   req.SessionID,
				IdentityKey: req.IdentityKey,
				Policy:      req.PolicyName,
				IP:          ClientIPFromContext(ctx),
				Success:     false,
				ErrorKind:   failKindLabel(kind),
			})
			return Decision{
				Status: http.StatusForbidden,
				Kind:   kind,
			}, nil
		}
	}

	if e.config.Audit.EmitAdmitted {
		e.emitAudit(ctx, AuditEvent{
			Timestamp:   e.now(),
			EventType:   "gate.admit",
			SessionID:   req.SessionID,
			IdentityKey: req.IdentityKey,
			Policy:      req.PolicyName,
			IP:          ClientIPFromContext(ctx),
			Success:     true,
		})
	}

	return Decision{Allowed: true}, nil
}

/*
====================================
INTROSPECTION / CONFIG ACCESS
====================================
*/

// HeaderName describes the headername operation and its observable behavior.
//
// HeaderName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) HeaderName() string {
	return e.config.CSRF.HeaderName
}

// ClientIDHeader describes the clientidheader operation and its observable behavior.
//
// ClientIDHeader does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClientIDHeader() string {
	return e.config.CSRF.ClientIDHeader
}

// AllowAnonymous describes the allowanonymous operation and its observable behavior.
//
// AllowAnonymous does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AllowAnonymous() bool {
	return e.config.CSRF.AllowAnonymous
}

// Cookie describes the cookie operation and its observable behavior.
//
// Cookie does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Cookie() CookieConfig {
	cookie := e.config.Cookie
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = e.config.CSRF.TokenTTL
	}
	return cookie
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

/*
====================================
HELPERS
====================================
*/

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitAuditOutcome(ctx context.Context, event AuditEvent, success bool) {
	if success && !e.config.Audit.EmitAdmitted {
		return
	}
	e.emitAudit(ctx, event)
}

func csrfMetric(kind FailKind) MetricID {
	switch kind {
	case FailNone:
		return MetricCSRFPass
	case FailCSRFMissing:
		return MetricCSRFMissing
	case FailCSRFMalformed:
		return MetricCSRFMalformed
	case FailCSRFExpired:
		return MetricCSRFExpired
	default:
		return MetricCSRFMismatch
	}
}

func failKindLabel(kind FailKind) string {
	if kind == FailNone {
		return ""
	}
	return kind.String()
}
