package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMergeMetrics() {
	r.MergesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_merges_total",
			Help: "Total number of template merges",
		},
		[]string{"status"},
	)

	r.MergeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bondgraph_merge_duration_seconds",
			Help:    "Template merge duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.MergeNodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_merge_nodes_total",
			Help: "Template nodes visited during merges, by outcome",
		},
		[]string{"outcome"},
	)

	r.PortMismatchTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_port_mismatches_total",
			Help: "Total number of merges rejected by the strict port policy",
		},
	)
}
