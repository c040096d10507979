package bondgraph

import (
	"time"

	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
)

// MergeTemplate instantiates t into the model.
//
// Template nodes named as keys of portToNode take the mapped host URI; every
// other node and every bond gets a freshly minted URI. A node whose final URI
// already exists in the host is reused as is, which is how ports of separate
// merges join up. Each template bond becomes one new host bond between the
// remapped endpoints.
func (m *Model) MergeTemplate(t *Template, portToNode map[string]string) error {
	const op = "merge_template"

	if err := m.checkUpdatable(op); err != nil {
		m.metrics.RecordMerge(0, 0, 0, err)
		return err
	}
	if t == nil || t.Model() == nil {
		return nil
	}

	start := time.Now()
	src := t.Model()

	if m.portPolicy == PortPolicyStrict {
		if err := m.checkPorts(t, portToNode); err != nil {
			m.metrics.RecordPortMismatch()
			m.metrics.RecordMerge(0, 0, time.Since(start), err)
			m.logger.Warn("merge rejected", logging.TemplateURI(t.URI()), logging.Error(err))
			return err
		}
	}

	remap := make(map[string]string, len(src.nodes))
	copied, reused := 0, 0
	for _, n := range src.nodes {
		final, mapped := portToNode[n.uri]
		if !mapped {
			final = m.mint()
		}
		remap[n.uri] = final

		if m.HasNode(final) {
			reused++
			continue
		}
		m.putNode(n.copyAs(final, m.units))
		copied++
	}

	for _, b := range src.bonds {
		if _, err := m.AddBond(m.mint(), remap[b.source.uri], remap[b.target.uri]); err != nil {
			m.metrics.RecordMerge(copied, reused, time.Since(start), err)
			return err
		}
	}

	elapsed := time.Since(start)
	m.metrics.RecordMerge(copied, reused, elapsed, nil)
	m.logger.Debug("template merged",
		logging.TemplateURI(t.URI()),
		logging.Int("copied", copied),
		logging.Int("reused", reused),
		logging.Int("bonds", len(src.bonds)),
		logging.Latency(elapsed))
	return nil
}

// checkPorts verifies that every port agrees on declared type and units with
// the host node it maps onto, whether that node exists already or is created
// by an earlier port of the same merge.
func (m *Model) checkPorts(t *Template, portToNode map[string]string) error {
	claimed := make(map[string]*Node, len(portToNode))
	for _, n := range t.Model().nodes {
		final, ok := portToNode[n.uri]
		if !ok {
			continue
		}
		existing, what := m.GetNode(final), "host node"
		if existing == nil {
			existing, what = claimed[final], "port mapped to"
		}
		if existing == nil {
			claimed[final] = n
			continue
		}
		if existing.declaredType != n.declaredType {
			return NewError("merge_template").Template(t.URI()).Field(n.uri).
				Context("%s %s has type %s, port has %s",
					what, m.DisplayID(final), m.DisplayID(existing.declaredType), m.DisplayID(n.declaredType)).
				Cause(ErrPortMismatch).Err()
		}
		if !existing.units.Equal(n.units) {
			return NewError("merge_template").Template(t.URI()).Field(n.uri).
				Context("%s %s has units %s, port has %s",
					what, m.DisplayID(final), existing.units, n.units).
				Cause(ErrPortMismatch).Err()
		}
	}
	return nil
}
