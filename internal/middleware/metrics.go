package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus middleware.
type MetricsConfig struct {
	// Namespace prefixes every metric (default "portfolio").
	Namespace string
	// Registry receives the collectors (default prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
	Buckets  []float64
}

type MetricsOption func(*MetricsConfig)

func WithNamespace(ns string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = ns }
}

func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = reg }
}

// Metrics counts requests and observes latency per route pattern. The chi
// pattern ("/projects/{slug}") is used instead of the raw path so slugs and
// ids do not explode label cardinality.
func Metrics(opts ...MetricsOption) func(http.Handler) http.Handler {
	cfg := MetricsConfig{
		Namespace: "portfolio",
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"method", "route", "status"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   cfg.Buckets,
	}, []string{"method", "route"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := routePattern(r)
			requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern is only complete after the router has matched, i.e. after
// next.ServeHTTP returns.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
