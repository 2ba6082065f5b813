package goShield

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goShield APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricAdmitAllowed is an exported constant or variable used by the admission engine.
	MetricAdmitAllowed MetricID = iota
	// MetricAdmitRejected is an exported constant or variable used by the admission engine.
	MetricAdmitRejected
	// MetricTokenIssued is an exported constant or variable used by the admission engine.
	MetricTokenIssued
	// MetricCSRFPass is an exported constant or variable used by the admission engine.
	MetricCSRFPass
	// MetricCSRFMissing is an exported constant or variable used by the admission engine.
	MetricCSRFMissing
	// MetricCSRFMalformed is an exported constant or variable used by the admission engine.
	MetricCSRFMalformed
	// MetricCSRFExpired is an exported constant or variable used by the admission engine.
	MetricCSRFExpired
	// MetricCSRFMismatch is an exported constant or variable used by the admission engine.
	MetricCSRFMismatch
	// MetricRevokeAll is an exported constant or variable used by the admission engine.
	MetricRevokeAll
	// MetricStoreError is an exported constant or variable used by the admission engine.
	MetricStoreError
	// MetricGateLatency is an exported constant or variable used by the admission engine.
	MetricGateLatency
	metricIDCount
)

const histBucketCount = 8

// bucketBoundsMicros are the inclusive upper bounds of the gate latency
// buckets; anything slower lands in the overflow bucket.
var bucketBoundsMicros = [histBucketCount - 1]int64{50, 100, 250, 500, 1000, 2500, 5000}

// counterCell keeps each counter on its own cache line so concurrent
// increments of different counters do not false-share.
type counterCell struct {
	n atomic.Uint64
	_ [56]byte
}

type latencyHist struct {
	buckets [histBucketCount]atomic.Uint64
}

// Metrics defines a public type used by goShield APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]counterCell
	gateLatency   latencyHist
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
//
// LatencyEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].n.Add(1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricGateLatency {
		return
	}
	m.gateLatency.buckets[bucketIndex(d)].Add(1)
}

// Value describes the value operation and its observable behavior.
//
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].n.Load()
}

// MetricsSnapshot defines a public type used by goShield APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return snap
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].n.Load()
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = m.gateLatency.buckets[i].Load()
		}
		snap.Histograms[MetricGateLatency] = buckets
	}

	return snap
}

func bucketIndex(d time.Duration) int {
	us := d.Microseconds()
	for i, bound := range bucketBoundsMicros {
		if us <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
