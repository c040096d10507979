package metrics

import (
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordMerge records one template merge with its per-node outcomes
func (r *Registry) RecordMerge(copied, reused int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.MergesTotal.WithLabelValues(status(err)).Inc()
	r.MergeDuration.Observe(duration.Seconds())
	if copied > 0 {
		r.MergeNodesTotal.WithLabelValues("copied").Add(float64(copied))
	}
	if reused > 0 {
		r.MergeNodesTotal.WithLabelValues("reused").Add(float64(reused))
	}
}

// RecordNodeAdded records a node added to a model
func (r *Registry) RecordNodeAdded() {
	if r == nil {
		return
	}
	r.NodesAddedTotal.Inc()
}

// RecordBond records a bond request; skipped bonds had an unknown endpoint
func (r *Registry) RecordBond(skipped bool) {
	if r == nil {
		return
	}
	if skipped {
		r.BondsSkippedTotal.Inc()
		return
	}
	r.BondsAddedTotal.Inc()
}

// RecordPortMismatch records a merge rejected by the strict port policy
func (r *Registry) RecordPortMismatch() {
	if r == nil {
		return
	}
	r.PortMismatchTotal.Inc()
}

// RecordComponentSkipped records a component whose template was unknown
func (r *Registry) RecordComponentSkipped() {
	if r == nil {
		return
	}
	r.ComponentsSkippedTotal.Inc()
}

// SetTemplatesRegistered records the size of the loaded template library
func (r *Registry) SetTemplatesRegistered(n int) {
	if r == nil {
		return
	}
	r.TemplatesRegistered.Set(float64(n))
}

// RecordFreeze records a model transitioning to the frozen state
func (r *Registry) RecordFreeze(nodes, bonds int, disconnected bool) {
	if r == nil {
		return
	}
	r.FrozenModelsTotal.Inc()
	r.FrozenModelNodes.Set(float64(nodes))
	r.FrozenModelBonds.Set(float64(bonds))
	if disconnected {
		r.DisconnectedModels.Inc()
	}
}

// RecordUnitMismatch records a rejected value assignment. target is "value"
// or "quantity".
func (r *Registry) RecordUnitMismatch(target string) {
	if r == nil {
		return
	}
	r.UnitMismatchesTotal.WithLabelValues(target).Inc()
}

// RecordFrozenMutation records a mutation attempted on a frozen model
func (r *Registry) RecordFrozenMutation(op string) {
	if r == nil {
		return
	}
	r.FrozenMutationsTotal.WithLabelValues(op).Inc()
}

// RecordComposition records one end-to-end composition
func (r *Registry) RecordComposition(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.CompositionsTotal.WithLabelValues(status(err)).Inc()
	r.CompositionDuration.Observe(duration.Seconds())
}

// RecordSkippedRow records a value or quantity row naming an unknown node
func (r *Registry) RecordSkippedRow(kind string) {
	if r == nil {
		return
	}
	r.RowsSkippedTotal.WithLabelValues(kind).Inc()
}

// RecordQuery records a GraphQL query execution
func (r *Registry) RecordQuery(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.QueriesTotal.WithLabelValues(status(err)).Inc()
	r.QueryDuration.Observe(duration.Seconds())
}

// Sample is a flattened metric value for display.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers every metric as flat samples sorted by name. Histograms
// are reported by their sample count.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: labels(m),
				Value:  value(mf.GetType(), m),
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func labels(m *dto.Metric) map[string]string {
	if len(m.GetLabel()) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return m.GetUntyped().GetValue()
	}
}
