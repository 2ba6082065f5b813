// Package prometheus renders goShield metric snapshots in the Prometheus
// text exposition format without importing the Prometheus client library.
//
// # Architecture boundaries
//
// This package only reads snapshots via the metrics source interface. It
// never writes metrics and never holds engine internals.
//
// # What this package must NOT do
//
//   - It must not register collectors with a global Prometheus registry.
//   - It must not cache snapshots between scrapes.
//   - It must not invent series that the core engine does not track.
package prometheus
