package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics wraps the Prometheus metrics the API server exposes. It owns
// its own registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ChannelExports      *prometheus.CounterVec
}

// NewMetrics creates a Metrics with its own Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homebase",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route pattern, and status.",
	}, []string{"method", "route", "status"})
	m.registry.MustRegister(m.HTTPRequestsTotal)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "homebase",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.registry.MustRegister(m.HTTPRequestDuration)

	m.ChannelExports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homebase",
		Name:      "channel_exports_total",
		Help:      "Channel export runs by channel kind and outcome.",
	}, []string{"kind", "outcome"})
	m.registry.MustRegister(m.ChannelExports)

	return m
}

// Handler returns an HTTP handler that serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler with request count and duration metrics.
// The route pattern keeps label cardinality bounded; raw URLs with IDs
// in them never become label values.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
