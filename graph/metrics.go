package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports Prometheus collectors for run execution. All methods are
// nil-safe so the executor can be wired without metrics.
//
// Example usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := graph.NewMetrics(registry)
//	exec, err := graph.NewExecutor(g, graph.Options{Metrics: metrics})
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	degraded      *prometheus.CounterVec
	runs          *prometheus.CounterVec
	inflight      prometheus.Gauge
}

// NewMetrics registers the collectors on the given registry under the
// careersim namespace.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careersim",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of stage executions including retries.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"node", "status"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careersim",
			Name:      "stage_retries_total",
			Help:      "Number of stage retry attempts.",
		}, []string{"node"}),
		degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careersim",
			Name:      "stage_degraded_total",
			Help:      "Number of advisory stage failures replaced by fallback output.",
		}, []string{"node"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careersim",
			Name:      "runs_total",
			Help:      "Number of completed runs by outcome.",
		}, []string{"status"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "careersim",
			Name:      "stages_inflight",
			Help:      "Number of stages currently executing.",
		}),
	}
}

// ObserveStage records the duration of one node's terminal outcome.
func (m *Metrics) ObserveStage(node, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(node, status).Observe(d.Seconds())
}

// IncRetry counts one retry attempt for node.
func (m *Metrics) IncRetry(node string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(node).Inc()
}

// IncDegraded counts one tolerated advisory failure for node.
func (m *Metrics) IncDegraded(node string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(node).Inc()
}

// ObserveRun counts one finished run with the given outcome.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

// SetInflight publishes the size of the currently executing wave.
func (m *Metrics) SetInflight(n int) {
	if m == nil {
		return
	}
	m.inflight.Set(float64(n))
}
