// Package metrics exposes Prometheus collectors for cache lookups, upstream
// fetches and webhook requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zntus/jbfc-kakao-chatbot/cache"
	"github.com/zntus/jbfc-kakao-chatbot/kleague"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "jbfc"

// Upstream latency buckets, in seconds.
var defaultBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates a registry with Go and process collectors plus the chatbot's
// own metrics.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cached computations by namespace and outcome",
			},
			[]string{"namespace", "result"},
		),

		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Requests sent to the league and media sites",
			},
			[]string{"endpoint", "status"},
		),

		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of upstream requests",
				Buckets:   defaultBuckets,
			},
			[]string{"endpoint"},
		),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Webhook requests by route and status code",
			},
			[]string{"route", "code"},
		),

		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Webhook request latency",
				Buckets:   defaultBuckets,
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		m.cacheLookups,
		m.upstreamRequests,
		m.upstreamDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheObserver returns a cache.Observer that counts lookups.
func (m *Metrics) CacheObserver() cache.Observer {
	return func(ns cache.Namespace, result cache.Result) {
		m.cacheLookups.WithLabelValues(string(ns), string(result)).Inc()
	}
}

// UpstreamObserver returns a kleague.UpstreamObserver recording status and
// latency. A status of zero means the request never got a response.
func (m *Metrics) UpstreamObserver() kleague.UpstreamObserver {
	return func(endpoint string, status int, elapsed time.Duration) {
		code := "error"
		if status > 0 {
			code = strconv.Itoa(status)
		}
		m.upstreamRequests.WithLabelValues(endpoint, code).Inc()
		m.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}
}

// ObserveHTTP records one served webhook request.
func (m *Metrics) ObserveHTTP(route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
