// Package metrics exposes Prometheus metrics for the settlement service:
// per-run settlement counters plus generic HTTP instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	settlementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Weekly settlement runs by outcome (clean, partial, fatal).",
		},
		[]string{"outcome"},
	)

	penaltiesAssigned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_penalties_assigned_total",
		Help: "Penalties recorded across all settlement runs.",
	})

	notificationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_notifications_sent_total",
		Help: "Notifications inserted across all settlement runs.",
	})

	pointsArchived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_points_archived_total",
		Help: "Point transactions archived across all settlement runs.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var initOnce sync.Once

// Init registers the metrics with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			settlementRuns, penaltiesAssigned, notificationsSent, pointsArchived,
			httpRequestsTotal, httpRequestDuration,
		)
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSettlement records the counters for one completed settlement run.
func ObserveSettlement(outcome string, penalties, notifications int, archived int64) {
	settlementRuns.WithLabelValues(outcome).Inc()
	penaltiesAssigned.Add(float64(penalties))
	notificationsSent.Add(float64(notifications))
	pointsArchived.Add(float64(archived))
}

// Instrument wraps a handler with request counting and latency observation.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
	})
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
