package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// compliance domain.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	transitions     *prometheus.CounterVec
	reviewLatency   prometheus.Observer
	activations     *prometheus.CounterVec
	pendingReviews  prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flag_cache_hits_total",
		Help: "Total feature flag cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flag_cache_misses_total",
		Help: "Total feature flag cache misses",
	})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credential_transitions_total",
		Help: "Credential state transitions by target status",
	}, []string{"table", "status"})

	reviewLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "credential_review_latency_seconds",
		Help:    "Time between submission and review decision",
		Buckets: []float64{60, 300, 1800, 3600, 21600, 86400, 259200, 604800},
	})

	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "driver_activations_total",
		Help: "Driver activation toggles by outcome",
	}, []string{"outcome"})

	pendingReviews := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "credentials_pending_review",
		Help: "Credentials currently awaiting review",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, transitions, reviewLatency, activations, pendingReviews, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		transitions:     transitions,
		reviewLatency:   reviewLatency,
		activations:     activations,
		pendingReviews:  pendingReviews,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a flag cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordTransition counts one credential state transition.
func (m *MetricsService) RecordTransition(table, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(table, status).Inc()
}

// ObserveReviewLatency records the time from submission to decision.
func (m *MetricsService) ObserveReviewLatency(d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	m.reviewLatency.Observe(d.Seconds())
}

// RecordActivation counts a driver activation attempt.
func (m *MetricsService) RecordActivation(outcome string) {
	if m == nil {
		return
	}
	m.activations.WithLabelValues(outcome).Inc()
}

// SetPendingReviews updates the pending-review gauge.
func (m *MetricsService) SetPendingReviews(n int) {
	if m == nil {
		return
	}
	m.pendingReviews.Set(float64(n))
}
