package bondgraph

import (
	"errors"
	"slices"
	"testing"

	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(hostURI)

	if m.Name() != "model" {
		t.Errorf("Name() = %q, want %q", m.Name(), "model")
	}
	if m.Namespace() != hostNS {
		t.Errorf("Namespace() = %q, want %q", m.Namespace(), hostNS)
	}
	if m.PortPolicy() != PortPolicyLenient {
		t.Errorf("PortPolicy() = %v, want lenient", m.PortPolicy())
	}
	if m.Frozen() || !m.Updatable() {
		t.Error("new model should be updatable")
	}
	if m.UnitRegistry() == nil {
		t.Error("UnitRegistry() should default to the standard registry")
	}

	named := NewModel(hostURI, WithName("Vessels"))
	if named.Name() != "Vessels" {
		t.Errorf("Name() = %q, want %q", named.Name(), "Vessels")
	}
}

func TestModel_DisplayID(t *testing.T) {
	m := newHost(t)

	tests := []struct {
		uri  string
		want string
	}{
		{hostNS + "u_Aorta", "u_Aorta"},
		{OneResistanceNode, "bg:OneResistanceNode"},
		{"https://other.example/x#thing", "thing"},
	}
	for _, tt := range tests {
		if got := m.DisplayID(tt.uri); got != tt.want {
			t.Errorf("DisplayID(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestParsePortPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PortPolicy
		wantErr bool
	}{
		{"", PortPolicyLenient, false},
		{"lenient", PortPolicyLenient, false},
		{" Strict ", PortPolicyStrict, false},
		{"paranoid", PortPolicyLenient, true},
	}
	for _, tt := range tests {
		got, err := ParsePortPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePortPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePortPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAddNode(t *testing.T) {
	m := newHost(t)

	n, err := m.AddNode(hostNS+"u_Aorta", OneResistanceNode, "L/s", "Aorta", map[string]string{"segment": "thoracic"})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if n.Name() != "u_Aorta" || n.Label() != "Aorta" {
		t.Errorf("got name %q label %q", n.Name(), n.Label())
	}
	if got, _ := n.Property("segment"); got != "thoracic" {
		t.Errorf("Property(segment) = %q", got)
	}
	if n.Units().String() != "L/s" {
		t.Errorf("Units() = %s, want L/s", n.Units())
	}
	if !m.HasNode(hostNS+"u_Aorta") || m.GetNode(hostNS+"u_Aorta") != n {
		t.Error("node not registered")
	}

	if _, err := m.AddNode(hostNS+"bad", ZeroNode, "furlong", "", nil); !errors.Is(err, units.ErrUnitParse) {
		t.Errorf("AddNode with bad units: error = %v, want ErrUnitParse", err)
	}
	if m.HasNode(hostNS + "bad") {
		t.Error("failed AddNode must not register a node")
	}
}

func TestAddNode_ReplacesInPlace(t *testing.T) {
	m := newHost(t)
	mustAddNode(t, m, hostNS+"a", ZeroNode, "kPa")
	mustAddNode(t, m, hostNS+"b", ZeroNode, "kPa")
	replacement := mustAddNode(t, m, hostNS+"a", OneNode, "L/s")

	nodes := m.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0] != replacement {
		t.Error("replacement should keep the original position")
	}
	if nodes[0].DeclaredType() != OneNode {
		t.Errorf("DeclaredType() = %s, want OneNode", nodes[0].DeclaredType())
	}
}

func TestAddNode_ReplacementKeepsBonds(t *testing.T) {
	m := newHost(t)
	a := mustAddNode(t, m, hostNS+"a", ZeroNode, "kPa")
	mustAddNode(t, m, hostNS+"b", OneNode, "L/s")
	c := mustAddNode(t, m, hostNS+"c", ZeroNode, "kPa")
	ab := mustAddBond(t, m, hostNS+"ab", hostNS+"a", hostNS+"b")
	bc := mustAddBond(t, m, hostNS+"bc", hostNS+"b", hostNS+"c")
	bb := mustAddBond(t, m, hostNS+"bb", hostNS+"b", hostNS+"b")

	b := mustAddNode(t, m, hostNS+"b", OneResistanceNode, "L/s")

	if ab.Target() != b || bc.Source() != b || bb.Source() != b || bb.Target() != b {
		t.Error("bonds should point at the replacement node")
	}
	if targets := a.Targets(); len(targets) != 1 || targets[0] != b {
		t.Errorf("a.Targets() = %v, want the replacement", targets)
	}
	if sources := c.Sources(); len(sources) != 1 || sources[0] != b {
		t.Errorf("c.Sources() = %v, want the replacement", sources)
	}
	if got, want := b.Delta(), "a + b - c - b"; got != want {
		t.Errorf("b.Delta() = %q, want %q", got, want)
	}
	if got := c.Delta(); got != "b" {
		t.Errorf("c.Delta() = %q, want b", got)
	}
}

func TestAddBond(t *testing.T) {
	m := newHost(t)
	a := mustAddNode(t, m, hostNS+"a", ZeroNode, "kPa")
	b := mustAddNode(t, m, hostNS+"b", OneNode, "L/s")

	bond := mustAddBond(t, m, hostNS+"ab", a.URI(), b.URI())
	if bond.Source() != a || bond.Target() != b {
		t.Error("bond endpoints are wrong")
	}
	if !slices.Equal(a.Targets(), []*Node{b}) || !slices.Equal(b.Sources(), []*Node{a}) {
		t.Error("adjacency not updated")
	}

	// A parallel bond adds no duplicate adjacency.
	mustAddBond(t, m, hostNS+"ab2", a.URI(), b.URI())
	if len(a.Targets()) != 1 || len(b.Sources()) != 1 {
		t.Errorf("adjacency duplicated: %d targets, %d sources", len(a.Targets()), len(b.Sources()))
	}
	if m.BondCount() != 2 {
		t.Errorf("BondCount() = %d, want 2", m.BondCount())
	}

	skipped, err := m.AddBond(hostNS+"dangling", a.URI(), hostNS+"missing")
	if err != nil || skipped != nil {
		t.Errorf("bond to unknown node: got (%v, %v), want (nil, nil)", skipped, err)
	}
	if m.GetBond(hostNS+"dangling") != nil {
		t.Error("skipped bond must not be registered")
	}
}

func TestNode_TypeAndEquations(t *testing.T) {
	m := newHost(t)
	n := mustAddNode(t, m, hostNS+"u", OneResistanceNode, "L/s")
	q, err := NewQuantity(testUnits, hostNS+"resistance", "kPa.s/L", "", "")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	n.AddQuantity(q)

	if n.Type() != OneNode {
		t.Errorf("Type() before values = %s, want OneNode", n.Type())
	}
	if len(n.Equations()) != 0 {
		t.Errorf("OneNode should have no equations, got %v", n.Equations())
	}

	if err := n.SetQuantityValue(q.URI(), "resistance", "120 kPa.s/L"); err != nil {
		t.Fatalf("SetQuantityValue failed: %v", err)
	}
	if n.Type() != OneResistanceNode {
		t.Errorf("Type() after values = %s, want OneResistanceNode", n.Type())
	}
	if got := n.Equations(); len(got) != 1 || got[0] != "Eq({NODE}, ({NODE_DELTA})/{RESISTANCE})" {
		t.Errorf("Equations() = %v", got)
	}
}

func TestQuantity_Defaults(t *testing.T) {
	q, err := NewQuantity(testUnits, hostNS+"elastance", "kPa/L", "", "")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	if q.Label() != q.URI() || q.VariableName() != q.URI() {
		t.Errorf("label %q variable %q, want both %q", q.Label(), q.VariableName(), q.URI())
	}

	q, err = NewQuantity(testUnits, hostNS+"elastance", "kPa/L", "bgo:elastance", "")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	if q.VariableName() != "bgo:elastance" {
		t.Errorf("VariableName() = %q, want label", q.VariableName())
	}

	if _, err := NewQuantity(testUnits, hostNS+"x", "furlong", "", ""); !errors.Is(err, units.ErrUnitParse) {
		t.Errorf("bad units: error = %v, want ErrUnitParse", err)
	}
}

func TestSetQuantityValue(t *testing.T) {
	m := newHost(t)
	n := mustAddNode(t, m, hostNS+"u", OneResistanceNode, "L/s")
	q, _ := NewQuantity(testUnits, hostNS+"resistance", "kPa.s/L", "", "")
	n.AddQuantity(q)

	if err := n.SetQuantityValue(q.URI(), hostNS+"resistance", "2 kPa.s/L"); err != nil {
		t.Fatalf("SetQuantityValue failed: %v", err)
	}

	tests := []struct {
		name    string
		literal string
		check   func(error) bool
	}{
		{"unit mismatch", "3 kPa", IsUnitMismatch},
		{"scaled units", "3 Pa.s/L", IsUnitMismatch},
		{"dimensionless", "3", IsUnitMismatch},
		{"unparseable", "three kPa.s/L", func(err error) bool { return errors.Is(err, units.ErrValueParse) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.SetQuantityValue(q.URI(), "resistance", tt.literal)
			if !tt.check(err) {
				t.Fatalf("SetQuantityValue(%q) error = %v", tt.literal, err)
			}
			values := n.QuantityValues()
			if len(values) != 1 || values[0].Value != 2 || values[0].Name != "resistance" {
				t.Errorf("stored value changed: %+v", values)
			}
		})
	}

	if err := n.SetQuantityValue(hostNS+"undeclared", "x", "1 kPa"); err != nil {
		t.Errorf("undeclared quantity should be ignored, got %v", err)
	}
	if len(n.QuantityValues()) != 1 {
		t.Error("undeclared quantity must not be stored")
	}
}

func TestSetValue(t *testing.T) {
	m := newHost(t)
	n := mustAddNode(t, m, hostNS+"v", ZeroStorageNode, "kPa")

	if _, ok := n.Value(); ok {
		t.Error("new node should have no value")
	}
	if err := n.SetValue("13.3 kPa"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := n.SetValue("9 kPa"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := n.SetValue("9 mm[Hg]"); !IsUnitMismatch(err) {
		t.Errorf("SetValue with wrong units: error = %v, want unit mismatch", err)
	}
	if v, ok := n.Value(); !ok || v != 9 {
		t.Errorf("Value() = %v, %v; want 9, true", v, ok)
	}

	var me *ModelError
	err := n.SetValue("1 L")
	if !errors.As(err, &me) || me.Op != "set_value" || me.URI != n.URI() {
		t.Errorf("expected ModelError for set_value on %s, got %v", n.URI(), err)
	}
}

func TestNode_Delta(t *testing.T) {
	m := newHost(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		mustAddNode(t, m, hostNS+id, ZeroNode, "kPa")
	}
	mustAddBond(t, m, hostNS+"b1", hostNS+"a", hostNS+"c")
	mustAddBond(t, m, hostNS+"b2", hostNS+"b", hostNS+"c")
	mustAddBond(t, m, hostNS+"b3", hostNS+"c", hostNS+"d")

	tests := []struct {
		node string
		want string
	}{
		{"a", "- c"},
		{"c", "a + b - d"},
		{"d", "c"},
	}
	for _, tt := range tests {
		if got := m.GetNode(hostNS + tt.node).Delta(); got != tt.want {
			t.Errorf("%s.Delta() = %q, want %q", tt.node, got, tt.want)
		}
	}

	lone := mustAddNode(t, m, hostNS+"lone", ZeroNode, "kPa")
	if got := lone.Delta(); got != "" {
		t.Errorf("unbonded Delta() = %q, want empty", got)
	}
}

func TestFreeze(t *testing.T) {
	m := newHost(t)
	mustAddNode(t, m, hostNS+"a", ZeroNode, "kPa")

	m.Freeze()
	first := m.Graph()
	m.Freeze()
	if m.Graph() != first {
		t.Error("second Freeze should not rebuild the graph")
	}
	if !m.Frozen() || m.Updatable() {
		t.Error("model should be frozen")
	}

	tests := []struct {
		name string
		op   func() error
	}{
		{"add node", func() error { _, err := m.AddNode(hostNS+"b", ZeroNode, "kPa", "", nil); return err }},
		{"add bond", func() error { _, err := m.AddBond(hostNS+"x", hostNS+"a", hostNS+"a"); return err }},
		{"merge", func() error { return m.MergeTemplate(newSegment(t), nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !IsFrozen(err) {
				t.Errorf("error = %v, want ErrFrozenModel", err)
			}
		})
	}
	if m.NodeCount() != 1 || m.BondCount() != 0 {
		t.Errorf("frozen model changed: %d nodes, %d bonds", m.NodeCount(), m.BondCount())
	}
}

func TestDisconnected(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		bonds [][2]string
		want  bool
	}{
		{"empty", nil, nil, true},
		{"single node", []string{"a"}, nil, false},
		{"two isolated", []string{"a", "b"}, nil, true},
		{"one bond", []string{"a", "b"}, [][2]string{{"a", "b"}}, false},
		{"reverse bond", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"c", "b"}}, false},
		{"two islands", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"c", "d"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newHost(t)
			for _, id := range tt.nodes {
				mustAddNode(t, m, hostNS+id, ZeroNode, "kPa")
			}
			for i, b := range tt.bonds {
				mustAddBond(t, m, hostNS+"b"+string(rune('0'+i)), hostNS+b[0], hostNS+b[1])
			}

			if got := m.Disconnected(); got != tt.want {
				t.Errorf("Disconnected() before freeze = %v, want %v", got, tt.want)
			}
			m.Freeze()
			if got := m.Disconnected(); got != tt.want {
				t.Errorf("Disconnected() after freeze = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGraphView(t *testing.T) {
	m := newHost(t)
	a, _ := m.AddNode(hostNS+"a", ZeroStorageNode, "kPa", "Aorta", map[string]string{"organ": "heart"})
	mustAddNode(t, m, hostNS+"b", OneNode, "L/s")
	mustAddBond(t, m, hostNS+"ab", a.URI(), hostNS+"b")

	g := m.Graph()
	if !m.Frozen() {
		t.Fatal("Graph() should freeze the model")
	}

	vertices := g.Vertices()
	if len(vertices) != 2 || vertices[0].ID != "a" || vertices[1].ID != "b" {
		t.Fatalf("Vertices() = %+v", vertices)
	}
	want := map[string]string{"organ": "heart", "type": "bg:ZeroNode", "label": "Aorta"}
	for k, v := range want {
		if vertices[0].Attributes[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, vertices[0].Attributes[k], v)
		}
	}
	if _, ok := vertices[1].Attributes["label"]; ok {
		t.Error("unlabelled node should have no label attribute")
	}

	edges := g.Edges()
	if len(edges) != 1 || edges[0] != (Edge{ID: "ab", URI: hostNS + "ab", Source: "a", Target: "b"}) {
		t.Errorf("Edges() = %+v", edges)
	}
	if _, ok := g.Vertex("missing"); ok {
		t.Error("Vertex(missing) should not be found")
	}
	if !g.Acyclic() {
		t.Error("a single bond is acyclic")
	}
	if len(g.Components().Components) != 1 {
		t.Error("graph should have one component")
	}
	if src, sink := g.Sources(), g.Sinks(); !slices.Equal(src, []string{"a"}) || !slices.Equal(sink, []string{"b"}) {
		t.Errorf("Sources() = %v, Sinks() = %v", src, sink)
	}
	if order, err := g.Order(); err != nil || !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("Order() = %v, %v", order, err)
	}
}

func TestGraphView_SharedLocalName(t *testing.T) {
	const foreign = "https://other.org/x#u_A"

	m := newHost(t)
	mustAddNode(t, m, hostNS+"u_A", ZeroNode, "kPa")
	mustAddNode(t, m, foreign, ZeroNode, "kPa")
	mustAddNode(t, m, hostNS+"u_B", OneNode, "L/s")
	mustAddBond(t, m, hostNS+"b1", hostNS+"u_A", hostNS+"u_B")
	mustAddBond(t, m, hostNS+"b2", foreign, hostNS+"u_B")

	g := m.Graph()
	vertices := g.Vertices()
	ids := make([]string, len(vertices))
	for i, v := range vertices {
		ids[i] = v.ID
	}
	if want := []string{"u_A", foreign, "u_B"}; !slices.Equal(ids, want) {
		t.Fatalf("vertex ids = %v, want %v", ids, want)
	}
	if got := g.Adjacency().Vertices(); len(got) != 3 {
		t.Errorf("adjacency has %d vertices, want 3", len(got))
	}

	for id, uri := range map[string]string{"u_A": hostNS + "u_A", foreign: foreign} {
		v, ok := g.Vertex(id)
		if !ok || v.URI != uri {
			t.Errorf("Vertex(%s) = %+v, %v, want URI %s", id, v, ok, uri)
		}
	}

	edges := g.Edges()
	if edges[0].Source != "u_A" || edges[1].Source != foreign {
		t.Errorf("edge sources = %s, %s", edges[0].Source, edges[1].Source)
	}
	if src := g.Sources(); !slices.Equal(src, []string{"u_A", foreign}) {
		t.Errorf("Sources() = %v", src)
	}
	if order, err := g.Order(); err != nil || len(order) != 3 {
		t.Errorf("Order() = %v, %v", order, err)
	}
}

func TestGraphView_ComponentsMatchDisconnected(t *testing.T) {
	m := newHost(t)
	mustAddNode(t, m, hostNS+"u_A", ZeroNode, "kPa")
	mustAddNode(t, m, "https://other.org/x#u_A", ZeroNode, "kPa")
	mustAddNode(t, m, hostNS+"u_B", OneNode, "L/s")
	mustAddBond(t, m, hostNS+"b1", hostNS+"u_A", hostNS+"u_B")

	if !m.Disconnected() {
		t.Fatal("isolated foreign node should leave the model disconnected")
	}
	if got := len(m.Graph().Components().Components); got != 2 {
		t.Errorf("Components() found %d, want 2", got)
	}
}
