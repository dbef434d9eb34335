package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// Metrics records flow outcomes. It implements flow.Observer.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
}

// NewMetrics creates the flow collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsage",
			Name:      "flow_invocations_total",
			Help:      "Flow invocations by outcome.",
		}, []string{"flow", "status", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopsage",
			Name:      "flow_duration_seconds",
			Help:      "End to end flow latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"flow", "status"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsage",
			Name:      "model_tokens_total",
			Help:      "Model tokens reported by providers.",
		}, []string{"flow", "direction"}),
	}
	m.registry.MustRegister(
		m.invocations,
		m.duration,
		m.tokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one result.
func (m *Metrics) Observe(name string, res flow.Result) {
	kind := ""
	if d := res.Err(); d != nil {
		kind = string(d.Kind)
	}
	status := res.Status()
	m.invocations.WithLabelValues(name, status, kind).Inc()
	m.duration.WithLabelValues(name, status).Observe(res.Meta.Duration.Seconds())
	if n := res.Meta.Usage.InputTokens; n > 0 {
		m.tokens.WithLabelValues(name, "input").Add(float64(n))
	}
	if n := res.Meta.Usage.OutputTokens; n > 0 {
		m.tokens.WithLabelValues(name, "output").Add(float64(n))
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ flow.Observer = (*Metrics)(nil)
