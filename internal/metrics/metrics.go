// Package metrics holds the Prometheus collectors recorded by the engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	ContextResolves *prometheus.CounterVec
	Renders         *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	Normalizations  prometheus.Counter
}

// New creates and registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ContextResolves: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "viewdata",
				Name:      "context_resolves_total",
				Help:      "Total context resolutions by template identifier",
			},
			[]string{"matched"}, // matched=true/false
		),
		Renders: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "viewdata",
				Name:      "renders_total",
				Help:      "Total render calls",
			},
			[]string{"status"}, // status=ok/error
		),
		RenderDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "viewdata",
				Name:      "render_duration_seconds",
				Help:      "Render duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Normalizations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "viewdata",
				Name:      "normalizations_total",
				Help:      "Total normalization passes",
			},
		),
	}
}

// ObserveResolve counts a resolution; matched reports whether any rule applied.
func (m *Metrics) ObserveResolve(matched bool) {
	if m == nil {
		return
	}
	label := "false"
	if matched {
		label = "true"
	}
	m.ContextResolves.WithLabelValues(label).Inc()
}

// ObserveRender records the outcome and duration of a render.
func (m *Metrics) ObserveRender(started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Renders.WithLabelValues(status).Inc()
	m.RenderDuration.Observe(time.Since(started).Seconds())
}

// ObserveNormalize counts a normalization pass.
func (m *Metrics) ObserveNormalize() {
	if m == nil {
		return
	}
	m.Normalizations.Inc()
}
