package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/basketful/storefront/internal/domain/checkout"
	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Database metrics
	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec

	// Business metrics
	checkoutsTotal     prometheus.Counter
	checkoutItemsTotal prometheus.Counter
	checkoutValueTotal prometheus.Counter
	recipesGenerated   *prometheus.CounterVec
}

// NewMetricsCollector registers every metric on a private registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),

		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation", "table"},
		),
		dbQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_query_errors_total",
				Help: "Database queries that returned an error",
			},
			[]string{"operation", "table"},
		),

		checkoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "checkouts_completed_total",
				Help: "Carts cleared by a successful checkout",
			},
		),
		checkoutItemsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "checkout_items_total",
				Help: "Cart rows cleared by checkout",
			},
		),
		checkoutValueTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "checkout_value_total",
				Help: "Sum of checked out cart totals",
			},
		),
		recipesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipes_generated_total",
				Help: "Recipes generated, by model",
			},
			[]string{"model"},
		),
	}
}

// Registry exposes the registry so other exporters can share it
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request count and latency per route template
func (m *MetricsCollector) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveQuery satisfies the postgres query monitor's observer
func (m *MetricsCollector) ObserveQuery(operation, table string, duration time.Duration, err error) {
	m.dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// HandleEvent updates business counters from domain events
func (m *MetricsCollector) HandleEvent(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case checkout.CompletedEvent:
		m.checkoutsTotal.Inc()
		m.checkoutItemsTotal.Add(float64(e.ItemCount))
		m.checkoutValueTotal.Add(e.Total)
	case recipegen.GeneratedEvent:
		m.recipesGenerated.WithLabelValues(e.Model).Inc()
	}
	return nil
}

// Subscribe registers HandleEvent for the business events
func (m *MetricsCollector) Subscribe(dispatcher shared.EventDispatcher) {
	dispatcher.Register(checkout.CompletedEvent{}.EventName(), m.HandleEvent)
	dispatcher.Register(recipegen.GeneratedEvent{}.EventName(), m.HandleEvent)
}
