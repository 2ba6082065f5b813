// Package internaldefs holds the shared metric name/help definitions consumed
// by the prometheus and otel exporters. It exists so both render the exact
// same series names from one table.
package internaldefs
