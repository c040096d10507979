package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all composition metrics
type Registry struct {
	// Model Metrics
	NodesAddedTotal      prometheus.Counter
	BondsAddedTotal      prometheus.Counter
	BondsSkippedTotal    prometheus.Counter
	UnitMismatchesTotal  *prometheus.CounterVec
	FrozenModelsTotal    prometheus.Counter
	FrozenModelNodes     prometheus.Gauge
	FrozenModelBonds     prometheus.Gauge
	DisconnectedModels   prometheus.Counter
	FrozenMutationsTotal *prometheus.CounterVec

	// Merge Metrics
	MergesTotal       *prometheus.CounterVec
	MergeDuration     prometheus.Histogram
	MergeNodesTotal   *prometheus.CounterVec
	PortMismatchTotal prometheus.Counter

	// Compose Metrics
	TemplatesRegistered    prometheus.Gauge
	CompositionsTotal      *prometheus.CounterVec
	CompositionDuration    prometheus.Histogram
	ComponentsSkippedTotal prometheus.Counter
	RowsSkippedTotal       *prometheus.CounterVec

	// Query Metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initModelMetrics()
	r.initMergeMetrics()
	r.initComposeMetrics()
	r.initQueryMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
