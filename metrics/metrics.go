// Package metrics provides Prometheus instrumentation for docroot.
//
// All metrics live in a private registry so the scrape endpoint can be served
// from a separate listener without exposing the default process collectors of
// other libraries linked into the binary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the request-level collectors for the file server.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts completed requests by method and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration samples wall-clock request latency by method.
	RequestDuration *prometheus.HistogramVec

	// BytesSent accumulates response body bytes across all requests.
	BytesSent prometheus.Counter
}

// New creates a Metrics with its own registry, pre-registering the Go runtime
// collectors alongside the request collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docroot",
			Name:      "requests_total",
			Help:      "Completed HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docroot",
			Name:      "request_duration_seconds",
			Help:      "Request latency from dispatch to response completion.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docroot",
			Name:      "bytes_sent_total",
			Help:      "Response body bytes written to clients.",
		}),
	}
}

// Record registers one completed request.
func (m *Metrics) Record(method string, code int, bytes int64, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.BytesSent.Add(float64(bytes))
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
