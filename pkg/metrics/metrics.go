// Package metrics provides Prometheus instruments for the cohesion service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns a registry and every instrument the service records
// ⭐ SSOT: Prometheus 지표는 여기서만 정의
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	// Scoring
	scoringLatency     prometheus.Histogram
	scoringValidations prometheus.Counter

	// Batch
	playsResolved   prometheus.Counter
	resolutionGaps  *prometheus.CounterVec
	aggregateRows   *prometheus.GaugeVec
	pipelineRuns    *prometheus.CounterVec
	pipelineLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets (seconds) for latency histograms
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithGoCollectors adds Go runtime and process collectors to the registry
func WithGoCollectors() Option {
	return func(m *Manager) {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewManager creates a Manager backed by its own registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "cohesion",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "scorer",
		Name:      "lineup_duration_seconds",
		Help:      "Time spent scoring a lineup",
		Buckets:   m.buckets,
	})

	m.scoringValidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scorer",
		Name:      "validation_failures_total",
		Help:      "Lineups rejected before scoring",
	})

	m.playsResolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "resolver",
		Name:      "plays_resolved_total",
		Help:      "Plays assigned to an offense and defense system state",
	})

	m.resolutionGaps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "resolver",
		Name:      "resolution_gaps_total",
		Help:      "Plays skipped because no coach window was active",
	}, []string{"side"})

	m.aggregateRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "aggregate",
		Name:      "rows",
		Help:      "Rows written to each aggregate table by the last run",
	}, []string{"table"})

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline runs by outcome",
	}, []string{"status"})

	m.pipelineLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Duration of a full resolve + aggregate run",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
}

// Registry exposes the underlying registry (tests, custom collectors)
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScoring records one scored lineup
func (m *Manager) ObserveScoring(d time.Duration) {
	m.scoringLatency.Observe(d.Seconds())
}

// IncValidationFailure records a rejected lineup
func (m *Manager) IncValidationFailure() {
	m.scoringValidations.Inc()
}

// AddPlaysResolved records resolved plays
func (m *Manager) AddPlaysResolved(n int) {
	m.playsResolved.Add(float64(n))
}

// IncResolutionGap records a skipped play for a side
func (m *Manager) IncResolutionGap(side string) {
	m.resolutionGaps.WithLabelValues(side).Inc()
}

// SetAggregateRows records the row count written to an aggregate table
func (m *Manager) SetAggregateRows(table string, n int) {
	m.aggregateRows.WithLabelValues(table).Set(float64(n))
}

// ObservePipelineRun records a finished pipeline run
func (m *Manager) ObservePipelineRun(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.pipelineRuns.WithLabelValues(status).Inc()
	m.pipelineLatency.Observe(d.Seconds())
}

// ObserveHTTPRequest records one served request
func (m *Manager) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
