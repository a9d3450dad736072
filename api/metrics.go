/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Exposes operational metrics:
  - HTTP request durations by method, route pattern, and status
  - Ledger operation counts by operation name and outcome
  - Dropped-entry gauges for the asynchronous audit and event sinks

REGISTRATION:
  Instruments are package-level and register with the default registry
  once at init, so routers can be constructed repeatedly (tests) without
  duplicate-registration panics.

SEE ALSO:
  - server.go: Mounts the instrument middleware and /metrics route
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warp/leave-ledger/ledger"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leave_http_request_duration_seconds",
			Help:    "HTTP request duration by method, route pattern, and status code",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"method", "route", "status"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leave_ledger_operations_total",
			Help: "Ledger operations by operation name and outcome",
		},
		[]string{"operation", "status"},
	)

	sinkDropped = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leave_sink_dropped_entries",
			Help: "Entries dropped by an asynchronous sink because its buffer was full",
		},
		[]string{"sink"},
	)
)

// DropFunc reports how many entries an asynchronous sink has dropped.
type DropFunc func() uint64

// MetricsLogger counts every ledger operation by outcome. It satisfies
// ledger.OperationLogger and never blocks.
type MetricsLogger struct{}

// LogOperation implements ledger.OperationLogger.
func (MetricsLogger) LogOperation(l ledger.OperationLog) {
	operationsTotal.WithLabelValues(l.Operation, l.Status).Inc()
}

// Metrics serves the Prometheus scrape, refreshing sink gauges first.
// GET /metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	for sink, fn := range h.SinkDrops {
		sinkDropped.WithLabelValues(sink).Set(float64(fn()))
	}
	promhttp.Handler().ServeHTTP(w, r)
}

// instrument observes one request duration per chi route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
