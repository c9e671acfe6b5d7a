// Package metrics provides Prometheus instrumentation for the finance backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RuleExecutions counts payment rule firings by outcome (executed, skipped, failed).
	RuleExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_rule_executions_total",
		Help: "Payment rule executions by outcome",
	}, []string{"outcome"})

	// PaymentsRecorded counts liability payments written, by payment type.
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_payments_recorded_total",
		Help: "Liability payments recorded",
	}, []string{"type"})

	// PriceRefreshes counts asset price refreshes by outcome (updated, failed).
	PriceRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_price_refreshes_total",
		Help: "Asset price refreshes by outcome",
	}, []string{"outcome"})

	// QuoteRequests counts upstream market data calls by function and cache result.
	QuoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_market_data_requests_total",
		Help: "Market data lookups by function and source",
	}, []string{"function", "source"})

	// JobDuration tracks scheduled job run time.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "networth_job_duration_seconds",
		Help:    "Scheduled job duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"job"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "networth_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
	}, []string{"method", "path"})

	// GRPCRequestsTotal counts gRPC calls by method and status code.
	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "networth_grpc_requests_total",
		Help: "Total gRPC requests",
	}, []string{"method", "code"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, routePattern(r)).Observe(duration)
	})
}

// routePattern prefers the chi route pattern to keep label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
