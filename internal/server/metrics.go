package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ecopredict"

// Metrics holds the Prometheus collectors exposed on /metrics. Each Metrics
// owns its registry so servers in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	predictionsTotal   *prometheus.CounterVec
	validationFailures prometheus.Counter
	scoreDistribution  prometheus.Histogram
	alarmsTotal        prometheus.Counter
	usagePercent       prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by whether the result came from cache.",
		}, []string{"cached"}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "validation_failures_total",
			Help:      "Prediction requests rejected for out-of-range or unknown input.",
		}),
		scoreDistribution: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "predicted_score",
			Help:      "Distribution of predicted efficiency scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		alarmsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "usage_alarms_total",
			Help:      "High energy usage alarms raised.",
		}),
		usagePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "usage_percent",
			Help:      "Most recent household energy usage reading.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.predictionsTotal,
		m.validationFailures,
		m.scoreDistribution,
		m.alarmsTotal,
		m.usagePercent,
		prometheus.NewGoCollector(),
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler records request count and latency for route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Prediction records a served prediction.
func (m *Metrics) Prediction(score float64, cached bool) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(strconv.FormatBool(cached)).Inc()
	m.scoreDistribution.Observe(score)
}

// ValidationFailure records a rejected prediction request.
func (m *Metrics) ValidationFailure() {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
}

// Usage records a usage reading and whether it raised an alarm.
func (m *Metrics) Usage(percent float64, alarmed bool) {
	if m == nil {
		return
	}
	m.usagePercent.Set(percent)
	if alarmed {
		m.alarmsTotal.Inc()
	}
}
