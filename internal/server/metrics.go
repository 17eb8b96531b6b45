package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/fieldfmt/internal/mask"
)

const metricsNamespace = "fieldfmt"

// Metrics holds the Prometheus collectors of the server. Each Metrics owns
// its registry, so several servers (or tests) can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	activeRequests  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	masksApplied    *prometheus.CounterVec
	maskFailures    *prometheus.CounterVec
	elementsSkipped *prometheus.CounterVec
}

// NewMetrics creates and registers the server collectors together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path.",
		}, []string{"path"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests being served.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		masksApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "masks_applied_total",
			Help:      "Masks attached to form fields by mode.",
		}, []string{"mode"}),
		maskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mask_failures_total",
			Help:      "Form fields the masking engine rejected by mode.",
		}, []string{"mode"}),
		elementsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "elements_skipped_total",
			Help:      "Matched elements skipped because they are not text inputs, by mode.",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.activeRequests,
		m.requestDuration,
		m.masksApplied,
		m.maskFailures,
		m.elementsSkipped,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
}

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveRequest counts a finished request and records its latency.
func (m *Metrics) ObserveRequest(path string, d time.Duration) {
	m.requestsTotal.WithLabelValues(path).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// RecordMask adds the outcome of one Apply call.
func (m *Metrics) RecordMask(res mask.Result) {
	mode := res.Mode.String()
	m.masksApplied.WithLabelValues(mode).Add(float64(res.Applied()))
	m.maskFailures.WithLabelValues(mode).Add(float64(res.Failed))
	m.elementsSkipped.WithLabelValues(mode).Add(float64(res.Skipped))
}

// WritePrometheus serves the metrics in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
