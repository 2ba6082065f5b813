// Package otel bridges goShield metric snapshots into OpenTelemetry
// observable instruments.
//
// # Architecture boundaries
//
// The bridge observes counters and cumulative histogram buckets lazily in
// the meter's collection callback. Nothing in this package touches the
// admission hot path.
//
// # What this package must NOT do
//
//   - It must not install a global meter provider.
//   - It must not record synchronous measurements.
//   - It must not rename or re-bucket the core metric series.
package otel
