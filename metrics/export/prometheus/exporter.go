package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goShield.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders gate metric snapshots in the Prometheus text
// exposition format. It holds no state beyond the source; every render reads
// a fresh snapshot.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter reading from the given
// [goShield.Engine].
func NewPrometheusExporter(engine *goShield.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates an exporter over a custom metrics
// source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler serving the rendered exposition.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render produces the full text exposition for the current snapshot. An
// all-zero snapshot renders as the empty string.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var tw textWriter
	tw.grow(4096)

	for _, def := range internaldefs.CounterDefs {
		tw.counter(def.Name, def.Help, snapshot.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		raw := internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID])
		tw.histogram(def.Name, def.Help, internaldefs.CumulativeBuckets(raw))
	}
	tw.counter("goshield_audit_dropped_total", "Audit events shed under dispatcher backpressure.", dropped)

	return tw.String()
}

// textWriter assembles an exposition document line by line.
type textWriter struct {
	b strings.Builder
}

func (t *textWriter) grow(n int) { t.b.Grow(n) }

func (t *textWriter) String() string { return t.b.String() }

func (t *textWriter) meta(name, kind, help string) {
	t.line("# HELP " + name + " " + escapeHelp(help))
	t.line("# TYPE " + name + " " + kind)
}

func (t *textWriter) sample(series string, value uint64) {
	t.line(series + " " + strconv.FormatUint(value, 10))
}

func (t *textWriter) line(s string) {
	t.b.WriteString(s)
	t.b.WriteByte('\n')
}

func (t *textWriter) counter(name, help string, value uint64) {
	t.meta(name, "counter", help)
	t.sample(name, value)
}

func (t *textWriter) histogram(name, help string, cumulative [8]uint64) {
	t.meta(name, "histogram", help)
	for i, le := range internaldefs.HistogramBounds {
		t.sample(name+`_bucket{le="`+le+`"}`, cumulative[i])
	}
	t.sample(name+"_count", cumulative[len(cumulative)-1])
	// The core tracks bucket counts only, so the sum series is pinned at
	// zero to keep scrapers that expect it happy.
	t.sample(name+"_sum", 0)
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, `\`, `\\`)
	return strings.ReplaceAll(help, "\n", `\n`)
}
