package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goShield.MetricsSnapshot
	AuditDropped() uint64
}

// OtelExporter bridges goShield metric snapshots into OpenTelemetry
// observable instruments. All values are observed on collection, so the
// exporter adds no overhead on the admission hot path.
type OtelExporter struct {
	source       metricsSource
	meter        metric.Meter
	registration metric.Registration

	counters       map[goShield.MetricID]metric.Int64ObservableCounter
	bucketCounters map[goShield.MetricID][]metric.Int64ObservableCounter
	auditDropped   metric.Int64ObservableCounter
}

// NewOtelExporter registers observable instruments for the given
// [goShield.Engine] on the supplied meter.
func NewOtelExporter(engine *goShield.Engine, meter metric.Meter) (*OtelExporter, error) {
	return NewOtelExporterFromSource(engine, meter)
}

// NewOtelExporterFromSource registers observable instruments for a custom
// metrics source on the supplied meter.
func NewOtelExporterFromSource(source metricsSource, meter metric.Meter) (*OtelExporter, error) {
	if source == nil {
		return nil, fmt.Errorf("otel exporter: nil metrics source")
	}

	e := &OtelExporter{
		source:         source,
		meter:          meter,
		counters:       make(map[goShield.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
		bucketCounters: make(map[goShield.MetricID][]metric.Int64ObservableCounter, len(internaldefs.HistogramDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*len(internaldefs.HistogramBoundSuffix)+1)

	for _, def := range internaldefs.CounterDefs {
		counter, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("otel exporter: register %s: %w", def.Name, err)
		}
		e.counters[def.ID] = counter
		observables = append(observables, counter)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets := make([]metric.Int64ObservableCounter, 0, len(internaldefs.HistogramBoundSuffix))
		for _, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			counter, err := meter.Int64ObservableCounter(name, metric.WithDescription(def.Help))
			if err != nil {
				return nil, fmt.Errorf("otel exporter: register %s: %w", name, err)
			}
			buckets = append(buckets, counter)
			observables = append(observables, counter)
		}
		e.bucketCounters[def.ID] = buckets
	}

	dropped, err := meter.Int64ObservableCounter(
		"goshield_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: register goshield_audit_dropped_total: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: register callback: %w", err)
	}
	e.registration = registration

	return e, nil
}

func (e *OtelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for id, counter := range e.counters {
		observer.ObserveInt64(counter, int64(snapshot.Counters[id]))
	}

	for id, buckets := range e.bucketCounters {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[id]))
		for i, counter := range buckets {
			observer.ObserveInt64(counter, int64(cumulative[i]))
		}
	}

	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))

	return nil
}

// Close unregisters the observation callback. The exporter must not be
// used after Close.
func (e *OtelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
