// Package metrics exposes Prometheus collectors for external calls,
// analyses and store degradations. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// External call targets.
const (
	TargetModel     = "model"
	TargetOCR       = "ocr"
	TargetPredictor = "predictor"
	TargetFacility  = "facility"
)

// Call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeFailure = "failure"
)

// Metrics holds the registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	externalCalls    *prometheus.CounterVec
	externalDuration *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	storeDegraded    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthealth",
			Name:      "external_calls_total",
			Help:      "Outbound calls to the model server, OCR, predictor and map-data service.",
		}, []string{"target", "kind", "outcome"}),
		externalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smarthealth",
			Name:      "external_call_duration_seconds",
			Help:      "Latency of outbound calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"target", "kind"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthealth",
			Name:      "analyses_total",
			Help:      "Completed analysis requests by endpoint and result source.",
		}, []string{"endpoint", "source", "success"}),
		storeDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smarthealth",
			Name:      "store_degraded_writes_total",
			Help:      "Analysis history writes that fell back to a smaller form.",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.externalCalls,
		m.externalDuration,
		m.analyses,
		m.storeDegraded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCall records one outbound call.
func (m *Metrics) ObserveCall(target, kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(target, kind, outcome).Inc()
	m.externalDuration.WithLabelValues(target, kind).Observe(d.Seconds())
}

// ObserveAnalysis records one analysis response.
func (m *Metrics) ObserveAnalysis(endpoint, source string, success bool) {
	if m == nil {
		return
	}
	ok := "false"
	if success {
		ok = "true"
	}
	m.analyses.WithLabelValues(endpoint, source, ok).Inc()
}

// ObserveStoreDegraded records a degraded history write ("minimal" or "dropped").
func (m *Metrics) ObserveStoreDegraded(stage string) {
	if m == nil {
		return
	}
	m.storeDegraded.WithLabelValues(stage).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome maps an error to a call outcome label.
func Outcome(err error, timeout bool) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case timeout:
		return OutcomeTimeout
	default:
		return OutcomeFailure
	}
}
