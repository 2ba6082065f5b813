package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	goShield "github.com/MrEthical07/goShield"
)

type fakeSource struct {
	snapshot goShield.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goShield.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                      { return f.dropped }

func testSnapshot() goShield.MetricsSnapshot {
	return goShield.MetricsSnapshot{
		Counters: map[goShield.MetricID]uint64{
			goShield.MetricAdmitAllowed:  12,
			goShield.MetricAdmitRejected: 3,
			goShield.MetricTokenIssued:   5,
			goShield.MetricCSRFMismatch:  2,
		},
		Histograms: map[goShield.MetricID][]uint64{
			goShield.MetricGateLatency: {4, 2, 1, 0, 0, 0, 0, 1},
		},
	}
}

func TestRenderCounters(t *testing.T) {
	exp := NewPrometheusExporterFromSource(&fakeSource{snapshot: testSnapshot(), dropped: 7})
	out := exp.Render()

	for _, want := range []string{
		"# TYPE goshield_admit_allowed_total counter",
		"goshield_admit_allowed_total 12",
		"goshield_admit_rejected_total 3",
		"goshield_token_issued_total 5",
		"goshield_csrf_mismatch_total 2",
		"goshield_audit_dropped_total 7",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	exp := NewPrometheusExporterFromSource(&fakeSource{snapshot: testSnapshot()})
	out := exp.Render()

	for _, want := range []string{
		"# TYPE goshield_gate_latency_seconds histogram",
		`goshield_gate_latency_seconds_bucket{le="0.00005"} 4`,
		`goshield_gate_latency_seconds_bucket{le="0.0001"} 6`,
		`goshield_gate_latency_seconds_bucket{le="0.00025"} 7`,
		`goshield_gate_latency_seconds_bucket{le="+Inf"} 8`,
		"goshield_gate_latency_seconds_count 8",
		"goshield_gate_latency_seconds_sum 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exp := NewPrometheusExporterFromSource(&fakeSource{
		snapshot: goShield.MetricsSnapshot{
			Counters:   map[goShield.MetricID]uint64{},
			Histograms: map[goShield.MetricID][]uint64{},
		},
	})
	if out := exp.Render(); out != "" {
		t.Fatalf("expected empty render for empty snapshot, got:\n%s", out)
	}
}

func TestHandlerServesTextExposition(t *testing.T) {
	exp := NewPrometheusExporterFromSource(&fakeSource{snapshot: testSnapshot()})

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "goshield_admit_allowed_total 12") {
		t.Fatalf("handler body missing counter:\n%s", rec.Body.String())
	}
}

func TestEscapeHelp(t *testing.T) {
	if got := escapeHelp("line\nbreak\\slash"); got != `line\nbreak\\slash` {
		t.Fatalf("unexpected escape result %q", got)
	}
}
