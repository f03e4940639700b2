// Package metrics holds the prometheus collectors for the plan lifecycle.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ifit"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	gatewayCalls    *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	reviewDecisions *prometheus.CounterVec
	plansCreated    prometheus.Counter
	exports         *prometheus.CounterVec
	storeSelfHeals  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry together with the Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Model calls by operation and outcome (ok, malformed_response, service_degraded, transport_error).",
		}, []string{"operation", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Model call latency by operation.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
		reviewDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "review",
			Name:      "decisions_total",
			Help:      "Trainer decisions by outcome (approved, rejected, conflict, forbidden).",
		}, []string{"outcome"}),
		plansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plans",
			Name:      "created_total",
			Help:      "Pending plans stored after a validated draft.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "documents_total",
			Help:      "Rendered documents by format and result.",
		}, []string{"format", "result"}),
		storeSelfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "self_heals_total",
			Help:      "Corrupted local payloads reset to empty, by key.",
		}, []string{"key"}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.gatewayCalls,
		m.gatewayLatency,
		m.reviewDecisions,
		m.plansCreated,
		m.exports,
		m.storeSelfHeals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveGateway(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(operation, outcome).Inc()
	m.gatewayLatency.WithLabelValues(operation).Observe(took.Seconds())
}

func (m *Metrics) ReviewDecision(outcome string) {
	if m == nil {
		return
	}
	m.reviewDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PlanCreated() {
	if m == nil {
		return
	}
	m.plansCreated.Inc()
}

func (m *Metrics) Export(format, result string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, result).Inc()
}

func (m *Metrics) StoreSelfHeal(key string) {
	if m == nil {
		return
	}
	m.storeSelfHeals.WithLabelValues(key).Inc()
}
