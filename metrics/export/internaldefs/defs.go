package internaldefs

import (
	goShield "github.com/MrEthical07/goShield"
)

// CounterDef defines a public type used by goShield APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goShield APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the admission engine.
var CounterDefs = []CounterDef{
	{ID: goShield.MetricAdmitAllowed, Name: "goshield_admit_allowed_total", Help: "Admission checks that admitted the request."},
	{ID: goShield.MetricAdmitRejected, Name: "goshield_admit_rejected_total", Help: "Admission checks that rejected the request."},
	{ID: goShield.MetricTokenIssued, Name: "goshield_token_issued_total", Help: "Issued anti-forgery tokens."},
	{ID: goShield.MetricCSRFPass, Name: "goshield_csrf_pass_total", Help: "Successful CSRF verifications."},
	{ID: goShield.MetricCSRFMissing, Name: "goshield_csrf_missing_total", Help: "CSRF checks failed for a missing token."},
	{ID: goShield.MetricCSRFMalformed, Name: "goshield_csrf_malformed_total", Help: "CSRF checks failed for a malformed token."},
	{ID: goShield.MetricCSRFExpired, Name: "goshield_csrf_expired_total", Help: "CSRF checks failed for an expired token."},
	{ID: goShield.MetricCSRFMismatch, Name: "goshield_csrf_mismatch_total", Help: "CSRF checks failed for a digest mismatch."},
	{ID: goShield.MetricRevokeAll, Name: "goshield_revoke_all_total", Help: "Secret rotations revoking all outstanding tokens."},
	{ID: goShield.MetricStoreError, Name: "goshield_store_error_total", Help: "Bucket store failures on the admission path."},
}

// HistogramDefs is an exported constant or variable used by the admission engine.
var HistogramDefs = []HistogramDef{
	{ID: goShield.MetricGateLatency, Name: "goshield_gate_latency_seconds", Help: "Gate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the admission engine.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the admission engine.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_0025",
	"0_005",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	total := uint64(0)
	for i, v := range raw {
		total += v
		out[i] = total
	}
	return out
}
