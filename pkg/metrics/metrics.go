// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results recorded for live AQI enrichment.
const (
	LookupOK      = "ok"
	LookupFailed  = "failed"
	LookupSkipped = "skipped"
)

// Recorder is the set of observations the pipeline and server emit.
type Recorder interface {
	RecordLoad(ok bool, elapsed time.Duration)
	SetRegionCoverage(joined, unjoined int)
	RecordLookup(result string, elapsed time.Duration)
	RecordRedraw(category string, elapsed time.Duration)
	RecordHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns the dashboard's Prometheus collectors.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	loads          *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	regions        *prometheus.GaugeVec
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	redraws        *prometheus.CounterVec
	redrawDuration prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewManager creates a metrics manager registered on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "dashboard",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.loads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "loads_total",
		Help:      "Dataset loads by result",
	}, []string{"result"})

	m.loadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "load_duration_seconds",
		Help:      "Time to fetch, parse and join both dataset documents",
		Buckets:   m.buckets,
	})

	m.regions = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "regions",
		Help:      "Regions in the current snapshot by join state",
	}, []string{"state"})

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "aqi_lookups_total",
		Help:      "Live AQI lookups by result",
	}, []string{"result"})

	m.lookupDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "aqi_lookup_duration_seconds",
		Help:      "Live AQI lookup latency",
		Buckets:   m.buckets,
	})

	m.redraws = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "redraws_total",
		Help:      "View redraws by category",
	}, []string{"category"})

	m.redrawDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "redraw_duration_seconds",
		Help:      "Time to resolve, classify and aggregate one selection",
		Buckets:   m.buckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status_code"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
}

// RecordLoad counts a dataset load.
func (m *Manager) RecordLoad(ok bool, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.loads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}

// SetRegionCoverage publishes how many regions have a demographic record.
func (m *Manager) SetRegionCoverage(joined, unjoined int) {
	m.regions.WithLabelValues("joined").Set(float64(joined))
	m.regions.WithLabelValues("unjoined").Set(float64(unjoined))
}

// RecordLookup counts one live AQI lookup.
func (m *Manager) RecordLookup(result string, elapsed time.Duration) {
	m.lookups.WithLabelValues(result).Inc()
	if result != LookupSkipped {
		m.lookupDuration.Observe(elapsed.Seconds())
	}
}

// RecordRedraw counts one view redraw.
func (m *Manager) RecordRedraw(category string, elapsed time.Duration) {
	m.redraws.WithLabelValues(category).Inc()
	m.redrawDuration.Observe(elapsed.Seconds())
}

// RecordHTTPRequest counts one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors are registered on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Nop discards all observations.
type Nop struct{}

func (Nop) RecordLoad(bool, time.Duration) {}
func (Nop) SetRegionCoverage(int, int) {}
func (Nop) RecordLookup(string, time.Duration) {}
func (Nop) RecordRedraw(string, time.Duration) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
