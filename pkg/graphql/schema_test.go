package graphql

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

const vessels = "https://example.org/vessels#"

// newModel builds a frozen two-vessel model: u_A -> r_AB -> u_B.
func newModel(t *testing.T) *bondgraph.Model {
	t.Helper()

	reg := units.NewRegistry()
	m := bondgraph.NewModel(vessels+"pair", bondgraph.WithName("Pair"), bondgraph.WithUnits(reg))

	a, err := m.AddNode(vessels+"u_A", bondgraph.ZeroStorageNode, "kPa", "Vessel A", nil)
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	r, err := m.AddNode(vessels+"r_AB", bondgraph.OneResistanceNode, "L/s", "", map[string]string{"role": "flow"})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if _, err := m.AddNode(vessels+"u_B", bondgraph.ZeroStorageNode, "kPa", "", nil); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if _, err := m.AddBond(vessels+"b1", vessels+"u_A", vessels+"r_AB"); err != nil {
		t.Fatalf("AddBond failed: %v", err)
	}
	if _, err := m.AddBond(vessels+"b2", vessels+"r_AB", vessels+"u_B"); err != nil {
		t.Fatalf("AddBond failed: %v", err)
	}

	q, err := bondgraph.NewQuantity(reg, vessels+"resistance", "kPa.s/L", "", "R")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	r.AddQuantity(q)
	if err := r.SetQuantityValue(q.URI(), q.URI(), "120 kPa.s/L"); err != nil {
		t.Fatalf("SetQuantityValue failed: %v", err)
	}
	if err := a.SetValue("13.3 kPa"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	m.Freeze()
	return m
}

// decode round-trips result data through JSON so tests can index plain maps.
func decode(t *testing.T, data any, v any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
}

func TestGenerateSchema_RequiresFrozenModel(t *testing.T) {
	m := bondgraph.NewModel(vessels + "open")
	_, err := GenerateSchema(m)
	if !errors.Is(err, ErrNotFrozen) {
		t.Errorf("GenerateSchema() error = %v, want ErrNotFrozen", err)
	}

	if _, err := GenerateSchema(nil); err == nil {
		t.Error("GenerateSchema(nil) should fail")
	}
}

func TestExecuteQuery_Model(t *testing.T) {
	schema, err := GenerateSchema(newModel(t))
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	result := ExecuteQuery(`{ model { uri name disconnected nodeCount bondCount } }`, schema)
	if result.HasErrors() {
		t.Fatalf("Query execution failed: %v", result.Errors)
	}

	var got struct {
		Model struct {
			URI          string
			Name         string
			Disconnected bool
			NodeCount    int
			BondCount    int
		}
	}
	decode(t, result.Data, &got)

	if got.Model.URI != vessels+"pair" || got.Model.Name != "Pair" {
		t.Errorf("model = %+v", got.Model)
	}
	if got.Model.Disconnected {
		t.Error("pair should be connected")
	}
	if got.Model.NodeCount != 3 || got.Model.BondCount != 2 {
		t.Errorf("counts = %d nodes %d bonds, want 3 and 2", got.Model.NodeCount, got.Model.BondCount)
	}
}

func TestExecuteQuery_Nodes(t *testing.T) {
	schema, err := GenerateSchema(newModel(t))
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	result := ExecuteQuery(`{
		nodes {
			id
			type
			declaredType
			units
			label
			delta
			value
			properties { key value }
			quantityValues { quantity name value units }
		}
	}`, schema)
	if result.HasErrors() {
		t.Fatalf("Query execution failed: %v", result.Errors)
	}

	type node struct {
		ID             string
		Type           string
		DeclaredType   string
		Units          string
		Label          string
		Delta          string
		Value          *float64
		Properties     []struct{ Key, Value string }
		QuantityValues []struct {
			Quantity string
			Name     string
			Value    float64
			Units    string
		}
	}
	var got struct{ Nodes []node }
	decode(t, result.Data, &got)

	if len(got.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(got.Nodes))
	}

	a, r, b := got.Nodes[0], got.Nodes[1], got.Nodes[2]
	if a.ID != "u_A" || a.Label != "Vessel A" || a.Units != "kPa" {
		t.Errorf("u_A = %+v", a)
	}
	if a.Value == nil || *a.Value != 13.3 {
		t.Errorf("u_A value = %v, want 13.3", a.Value)
	}
	if a.Type != "bg:ZeroNode" || a.DeclaredType != "bg:ZeroStorageNode" {
		t.Errorf("u_A types = %q, %q", a.Type, a.DeclaredType)
	}
	if a.Delta != "- r_AB" {
		t.Errorf("u_A delta = %q", a.Delta)
	}

	if r.Type != "bg:OneResistanceNode" {
		t.Errorf("r_AB type = %q, want the declared type once a quantity is set", r.Type)
	}
	if r.Delta != "u_A - u_B" {
		t.Errorf("r_AB delta = %q", r.Delta)
	}
	if len(r.Properties) != 1 || r.Properties[0].Key != "role" || r.Properties[0].Value != "flow" {
		t.Errorf("r_AB properties = %+v", r.Properties)
	}
	if len(r.QuantityValues) != 1 {
		t.Fatalf("r_AB quantity values = %+v", r.QuantityValues)
	}
	qv := r.QuantityValues[0]
	if qv.Quantity != vessels+"resistance" || qv.Name != "resistance" || qv.Value != 120 || qv.Units != "kPa.s/L" {
		t.Errorf("r_AB quantity value = %+v", qv)
	}

	if b.Value != nil {
		t.Errorf("u_B value = %v, want null", *b.Value)
	}
}

func TestExecuteQuery_NodeLookup(t *testing.T) {
	schema, err := GenerateSchema(newModel(t))
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	tests := []struct {
		term string
		want string
	}{
		{vessels + "u_B", vessels + "u_B"},
		{":u_B", vessels + "u_B"},
		{"u_B", vessels + "u_B"},
		{"u_Nowhere", ""},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			result := ExecuteQueryWithVariables(`query($uri: String!) { node(uri: $uri) { uri } }`,
				schema, map[string]any{"uri": tt.term})
			if result.HasErrors() {
				t.Fatalf("Query execution failed: %v", result.Errors)
			}

			var got struct{ Node *struct{ URI string } }
			decode(t, result.Data, &got)
			switch {
			case tt.want == "" && got.Node != nil:
				t.Errorf("node(%q) = %+v, want null", tt.term, got.Node)
			case tt.want != "" && (got.Node == nil || got.Node.URI != tt.want):
				t.Errorf("node(%q) = %+v, want %s", tt.term, got.Node, tt.want)
			}
		})
	}
}

func TestExecuteQuery_Bonds(t *testing.T) {
	schema, err := GenerateSchema(newModel(t))
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}

	result := ExecuteQuery(`{ bonds { uri id source target } }`, schema)
	if result.HasErrors() {
		t.Fatalf("Query execution failed: %v", result.Errors)
	}

	var got struct {
		Bonds []struct{ URI, ID, Source, Target string }
	}
	decode(t, result.Data, &got)

	if len(got.Bonds) != 2 {
		t.Fatalf("got %d bonds, want 2", len(got.Bonds))
	}
	first := got.Bonds[0]
	if first.ID != "b1" || first.Source != vessels+"u_A" || first.Target != vessels+"r_AB" {
		t.Errorf("first bond = %+v", first)
	}
}
