package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickscan_service_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickscan_service_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	fulfillmentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickscan_service_fulfillment_operations_total",
			Help: "Total number of fulfillment and scanner operations",
		},
		[]string{"operation", "status"},
	)

	scannerActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quickscan_service_scanner_active",
			Help: "Whether a capture session is currently active",
		},
	)
)

// PrometheusMiddleware collects per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)
	}
}

// RecordOperation records a fulfillment or scanner operation outcome.
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	fulfillmentOperations.WithLabelValues(operation, status).Inc()
}

// SetScannerActive reflects the capture session state on the gauge.
func SetScannerActive(active bool) {
	if active {
		scannerActive.Set(1)
	} else {
		scannerActive.Set(0)
	}
}
