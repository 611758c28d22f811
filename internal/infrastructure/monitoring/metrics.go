package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics handles Prometheus metrics collection on its own registry
type Metrics struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	aiOutcomesTotal  *prometheus.CounterVec
	groceryMerges    *prometheus.CounterVec
	rateLimitedTotal *prometheus.CounterVec
}

// NewMetrics creates the collector set
func NewMetrics(logger *zap.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		logger:   logger,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "route"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),
		aiOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_outcomes_total",
				Help: "AI calls by operation and whether the model answer or a fallback was used",
			},
			[]string{"operation", "outcome"},
		),
		groceryMerges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocery_items_added_total",
				Help: "Grocery items added, split by merged or inserted",
			},
			[]string{"result"},
		),
		rateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limited_requests_total",
				Help: "Requests rejected by the per-client limiter",
			},
			[]string{"route"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:          zap.NewStdLog(m.logger),
		EnableOpenMetrics: true,
	})
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration, size int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.httpResponseSize.WithLabelValues(method, route).Observe(float64(size))
}

// RecordOutcome counts an AI call by how its answer was obtained
func (m *Metrics) RecordOutcome(operation, outcome string) {
	m.aiOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordGroceryAdd counts one merged or inserted grocery item
func (m *Metrics) RecordGroceryAdd(merged bool) {
	result := "inserted"
	if merged {
		result = "merged"
	}
	m.groceryMerges.WithLabelValues(result).Inc()
}

// RecordRateLimited counts a rejected request
func (m *Metrics) RecordRateLimited(route string) {
	m.rateLimitedTotal.WithLabelValues(route).Inc()
}
