package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initComposeMetrics() {
	r.TemplatesRegistered = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bondgraph_templates_registered",
			Help: "Number of templates in the loaded library",
		},
	)

	r.CompositionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_compositions_total",
			Help: "Total number of model compositions",
		},
		[]string{"status"},
	)

	r.CompositionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bondgraph_composition_duration_seconds",
			Help:    "Model composition duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.ComponentsSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_components_skipped_total",
			Help: "Total number of components skipped because their template was unknown",
		},
	)

	r.RowsSkippedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_rows_skipped_total",
			Help: "Value and quantity rows skipped because their node was unknown",
		},
		[]string{"kind"},
	)
}
