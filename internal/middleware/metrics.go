package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service. The collectors
// exist from package init so callers never see nil; InitMetrics registers them.
var Metrics = struct {
	SubmissionsTotal *prometheus.CounterVec
	VotesTotal       *prometheus.CounterVec
	CommentsTotal    prometheus.Counter
	ResetsTotal      prometheus.Counter
	StoreErrors      prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}{
	SubmissionsTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battingorder_submissions_total",
			Help: "Batting orders submitted, by whether they were created or updated.",
		},
		[]string{"result"},
	),
	VotesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "battingorder_votes_total",
			Help: "Votes cast, by type and whether the vote was added or retracted.",
		},
		[]string{"type", "result"},
	),
	CommentsTotal: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battingorder_comments_total",
			Help: "Comments appended to batting orders.",
		},
	),
	ResetsTotal: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battingorder_resets_total",
			Help: "Admin resets of the submissions collection.",
		},
	),
	StoreErrors: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "battingorder_store_errors_total",
			Help: "Requests that failed with a server-side error.",
		},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "battingorder_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "battingorder_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	),
}

// InitMetrics registers all collectors with the default registry. Call once at startup.
func InitMetrics() {
	prometheus.MustRegister(
		Metrics.SubmissionsTotal,
		Metrics.VotesTotal,
		Metrics.CommentsTotal,
		Metrics.ResetsTotal,
		Metrics.StoreErrors,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		Metrics.RequestDuration.WithLabelValues(endpoint, c.Request.Method, status).Observe(time.Since(start).Seconds())
		Metrics.RequestsInFlight.Dec()
	}
}

// MetricsHandler serves the Prometheus exposition endpoint.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
