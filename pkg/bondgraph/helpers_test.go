package bondgraph

import (
	"testing"

	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

const (
	hostNS     = "https://example.org/vessels#"
	hostURI    = hostNS + "model"
	templateNS = "https://example.org/templates#"
)

var testUnits = units.NewRegistry()

func newHost(t *testing.T, opts ...Option) *Model {
	t.Helper()
	return NewModel(hostURI, append([]Option{WithUnits(testUnits)}, opts...)...)
}

func mustAddNode(t *testing.T, m *Model, uri, nodeType, unitsExpr string) *Node {
	t.Helper()
	n, err := m.AddNode(uri, nodeType, unitsExpr, "", nil)
	if err != nil {
		t.Fatalf("AddNode(%s) failed: %v", uri, err)
	}
	return n
}

func mustAddBond(t *testing.T, m *Model, uri, source, target string) *Bond {
	t.Helper()
	b, err := m.AddBond(uri, source, target)
	if err != nil {
		t.Fatalf("AddBond(%s) failed: %v", uri, err)
	}
	if b == nil {
		t.Fatalf("AddBond(%s) skipped", uri)
	}
	return b
}

// newSegment builds the vessel segment template: v_in -> u_mid -> v_out with
// v_in and v_out exposed as ports.
func newSegment(t *testing.T) *Template {
	t.Helper()

	m := NewModel(templateNS+"segment-model", WithUnits(testUnits))
	vIn := mustAddNode(t, m, templateNS+"v_in", ZeroStorageNode, "kPa")
	mid := mustAddNode(t, m, templateNS+"u_mid", OneResistanceNode, "L/s")
	vOut := mustAddNode(t, m, templateNS+"v_out", ZeroStorageNode, "kPa")
	mustAddBond(t, m, templateNS+"b1", vIn.URI(), mid.URI())
	mustAddBond(t, m, templateNS+"b2", mid.URI(), vOut.URI())

	resistance, err := NewQuantity(testUnits, templateNS+"resistance", "kPa.s/L", "", "R")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	mid.AddQuantity(resistance)

	tpl := NewTemplate(templateNS+"segment", m, "")
	tpl.AddPort(vIn.URI())
	tpl.AddPort(vOut.URI())
	return tpl
}

func portMap(in, out string) map[string]string {
	return map[string]string{
		templateNS + "v_in":  hostNS + in,
		templateNS + "v_out": hostNS + out,
	}
}
