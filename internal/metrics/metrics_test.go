package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResolve(true)
	m.ObserveResolve(true)
	m.ObserveResolve(false)
	if got := testutil.ToFloat64(m.ContextResolves.WithLabelValues("true")); got != 2 {
		t.Errorf("matched resolves = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ContextResolves.WithLabelValues("false")); got != 1 {
		t.Errorf("unmatched resolves = %v, want 1", got)
	}

	m.ObserveRender(time.Now(), nil)
	m.ObserveRender(time.Now(), errors.New("boom"))
	if got := testutil.ToFloat64(m.Renders.WithLabelValues("error")); got != 1 {
		t.Errorf("failed renders = %v, want 1", got)
	}

	m.ObserveNormalize()
	if got := testutil.ToFloat64(m.Normalizations); got != 1 {
		t.Errorf("normalizations = %v, want 1", got)
	}

	gathered, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	names := make(map[string]bool)
	for _, family := range gathered {
		names[family.GetName()] = true
	}
	for _, name := range []string{
		"viewdata_context_resolves_total",
		"viewdata_renders_total",
		"viewdata_render_duration_seconds",
		"viewdata_normalizations_total",
	} {
		if !names[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveResolve(true)
	m.ObserveRender(time.Now(), nil)
	m.ObserveNormalize()
}
