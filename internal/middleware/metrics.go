package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets covers model and script latencies from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyst_http_requests_in_flight",
			Help: "Requests currently being served",
		},
	)

	// AnalysesTotal counts finished analyses by final status (completed, error).
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_analyses_total",
			Help: "Finished analyses",
		},
		[]string{"status"},
	)

	// StageDuration records pipeline stage latency (generate, execute).
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_stage_duration_seconds",
			Help:    "Analysis stage duration",
			Buckets: LLMBuckets,
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInFlight,
		AnalysesTotal,
		StageDuration,
	)
}

// AnalysisMetrics reports pipeline metrics to the Prometheus collectors above.
type AnalysisMetrics struct{}

func (AnalysisMetrics) ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (AnalysisMetrics) ObserveAnalysis(status string) {
	AnalysesTotal.WithLabelValues(status).Inc()
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		class := strconv.Itoa(wrapped.statusCode/100) + "xx"
		RequestsTotal.WithLabelValues(r.Method, route, class).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
