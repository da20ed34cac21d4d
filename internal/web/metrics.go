package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bssong66/PerformanceTracker-sub000/internal/subscribe"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	intents     *prometheus.CounterVec
	truncations prometheus.Counter
	syncs       *prometheus.CounterVec
	synced      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lifecal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecal",
			Name:      "intents_total",
			Help:      "Gesture intents by kind and outcome (applied, rejected, failed).",
		}, []string{"kind", "outcome"}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lifecal",
			Name:      "recurrence_truncations_total",
			Help:      "Recurring events whose expansion hit the instance cap.",
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lifecal",
			Name:      "subscription_syncs_total",
			Help:      "Subscription syncs by source and outcome.",
		}, []string{"source", "outcome"}),
		synced: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lifecal",
			Name:      "subscription_events",
			Help:      "Events imported by the last successful sync of a subscription.",
		}, []string{"source"}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.intents, m.truncations, m.syncs, m.synced,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Intent counts one gesture outcome.
func (m *Metrics) Intent(kind, outcome string) {
	m.intents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Truncated(n int) {
	m.truncations.Add(float64(n))
}

// Synced records a batch of subscription reports.
func (m *Metrics) Synced(reports []subscribe.Report) {
	for _, r := range reports {
		if r.Err != nil {
			m.syncs.WithLabelValues(r.Source, "failed").Inc()
			continue
		}
		m.syncs.WithLabelValues(r.Source, "ok").Inc()
		m.synced.WithLabelValues(r.Source).Set(float64(r.Events))
	}
}

// instrument records count and latency for route.
func (m *Metrics) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
