package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts and times API calls. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Calls made to the portfolio REST API.",
		}, []string{"resource", "method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of calls to the portfolio REST API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
}

func (m *Metrics) observe(resource, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(resource, method, code).Inc()
	m.duration.WithLabelValues(resource, method).Observe(d.Seconds())
}
