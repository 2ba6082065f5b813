package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	goShield "github.com/MrEthical07/goShield"
)

type decisionContextKey struct{}

// DecisionFromContext returns the gate decision attached to an admitted
// request's context.
func DecisionFromContext(ctx context.Context) (goShield.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(goShield.Decision)
	return d, ok
}

// Protect returns middleware that gates requests under the named rate-limit
// policy and enforces CSRF on mutation methods (POST/PUT/PATCH/DELETE).
// The policy name is checked here, at route registration: an undeclared name
// is an error now, not a failure on the first request.
func Protect(engine *goShield.Engine, policyName string) (func(http.Handler) http.Handler, error) {
	return guard(engine, policyName, true)
}

// RateLimitOnly returns middleware that applies only the rate-limit step of
// the gate, for read-only route classes.
func RateLimitOnly(engine *goShield.Engine, policyName string) (func(http.Handler) http.Handler, error) {
	return guard(engine, policyName, false)
}

func guard(engine *goShield.Engine, policyName string, csrfProtected bool) (func(http.Handler) http.Handler, error) {
	if engine == nil {
		return nil, goShield.ErrEngineNotReady
	}
	if _, ok := engine.Policy(policyName); !ok {
		return nil, fmt.Errorf("%w: %q", goShield.ErrUnknownPolicy, policyName)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			sessionID := resolveSessionID(engine, r)

			ctx := goShield.WithClientIP(r.Context(), ip)

			decision, err := engine.Gate(ctx, goShield.GateRequest{
				PolicyName:    policyName,
				IdentityKey:   goShield.IdentityKey(sessionID, ip),
				SessionID:     sessionID,
				Token:         r.Header.Get(engine.HeaderName()),
				Mutation:      isMutation(r.Method),
				CSRFProtected: csrfProtected,
			})
			if err != nil {
				// Fail closed: an unavailable bucket store must not
				// silently admit traffic.
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"error": "admission unavailable",
				})
				return
			}

			if !decision.Allowed {
				writeRejection(w, decision)
				return
			}

			ctx = context.WithValue(ctx, decisionContextKey{}, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

func writeRejection(w http.ResponseWriter, decision goShield.Decision) {
	switch decision.Status {
	case http.StatusTooManyRequests:
		seconds := int64(decision.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":          "rate_limited",
			"retry_after_ms": decision.RetryAfter.Milliseconds(),
		})
	default:
		// Every CSRF sub-kind collapses to the same body: no oracle about
		// which check failed.
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": "csrf_failed",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
