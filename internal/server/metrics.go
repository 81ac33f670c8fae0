package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	stresshandlers "github.com/aristath/sentinel-stress/internal/modules/stress/handlers"
)

// MetricsRegistry holds the Prometheus metrics of the stress service
type MetricsRegistry struct {
	registry *prometheus.Registry

	// Stress run metrics
	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	PositionsEvaluated prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetricsRegistry creates a registry with all stress service metrics registered
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_stress_runs_total",
				Help: "Total number of stress runs by outcome",
			},
			[]string{"outcome"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_stress_run_duration_seconds",
				Help:    "Duration of stress runs in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"outcome"},
		),

		PositionsEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinel_stress_positions_evaluated_total",
				Help: "Total number of positions evaluated by successful stress runs",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_stress_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_stress_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.PositionsEvaluated,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRun records one stress run
func (m *MetricsRegistry) RecordRun(outcome string, positions int, duration time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if outcome == stresshandlers.OutcomeOK {
		m.PositionsEvaluated.Add(float64(positions))
	}
}

// Handler returns the Prometheus exposition handler
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry
func (m *MetricsRegistry) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware counts requests by their chi route pattern
func (m *MetricsRegistry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
