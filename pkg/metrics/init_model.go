package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.NodesAddedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_nodes_added_total",
			Help: "Total number of nodes added to models",
		},
	)

	r.BondsAddedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_bonds_added_total",
			Help: "Total number of bonds added to models",
		},
	)

	r.BondsSkippedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_bonds_skipped_total",
			Help: "Total number of bonds dropped because an endpoint was unknown",
		},
	)

	r.UnitMismatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_unit_mismatches_total",
			Help: "Total number of value assignments rejected for inconsistent units",
		},
		[]string{"target"},
	)

	r.FrozenModelsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_models_frozen_total",
			Help: "Total number of models frozen",
		},
	)

	r.FrozenModelNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bondgraph_frozen_model_nodes",
			Help: "Number of nodes in the most recently frozen model",
		},
	)

	r.FrozenModelBonds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bondgraph_frozen_model_bonds",
			Help: "Number of bonds in the most recently frozen model",
		},
	)

	r.DisconnectedModels = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bondgraph_disconnected_models_total",
			Help: "Total number of frozen models that were not a single connected component",
		},
	)

	r.FrozenMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondgraph_frozen_mutations_total",
			Help: "Total number of mutations rejected because the model was frozen",
		},
		[]string{"operation"},
	)
}
