package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

const (
	tplNS  = "https://example.org/templates#"
	hostNS = "https://example.org/vessels#"
	host   = hostNS + "model"
)

var testUnits = units.NewRegistry()

// newRegistry holds a single segment template: v_in -> u_mid -> v_out.
func newRegistry(t *testing.T) *bondgraph.TemplateRegistry {
	t.Helper()

	m := bondgraph.NewModel(tplNS+"segment-model", bondgraph.WithUnits(testUnits))
	for _, n := range []struct{ uri, typ, units string }{
		{"v_in", bondgraph.ZeroStorageNode, "kPa"},
		{"u_mid", bondgraph.OneResistanceNode, "L/s"},
		{"v_out", bondgraph.ZeroStorageNode, "kPa"},
	} {
		if _, err := m.AddNode(tplNS+n.uri, n.typ, n.units, "", nil); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}
	m.AddBond(tplNS+"b1", tplNS+"v_in", tplNS+"u_mid")
	m.AddBond(tplNS+"b2", tplNS+"u_mid", tplNS+"v_out")

	r, err := bondgraph.NewQuantity(testUnits, tplNS+"resistance", "kPa.s/L", "", "")
	if err != nil {
		t.Fatalf("NewQuantity failed: %v", err)
	}
	m.GetNode(tplNS + "u_mid").AddQuantity(r)
	m.Freeze()

	tpl := bondgraph.NewTemplate(tplNS+"segment", m, "")
	tpl.AddPort(tplNS + "v_in")
	tpl.AddPort(tplNS + "v_out")

	reg := bondgraph.NewTemplateRegistry()
	reg.Register(tpl)
	reg.AddQuantity(r)
	return reg
}

func rows(component, template, in, out string) []ComponentRow {
	return []ComponentRow{
		{Model: host, Component: component, Template: tplNS + template, Port: tplNS + "v_in", Node: hostNS + in},
		{Model: host, Component: component, Template: tplNS + template, Port: tplNS + "v_out", Node: hostNS + out},
	}
}

func concat(groups ...[]ComponentRow) []ComponentRow {
	var out []ComponentRow
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func counter(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestCompose_Chain(t *testing.T) {
	c := NewComposer(newRegistry(t))
	model, err := c.Compose(context.Background(), &Source{
		Components: concat(rows("c1", "segment", "a", "b"), rows("c2", "segment", "b", "c")),
		Values:     []ValueRow{{Node: hostNS + "a", Value: "10 kPa"}},
		Quantities: []QuantityRow{{Node: hostNS + "ID-00000001", Quantity: tplNS + "resistance", Value: "2 kPa.s/L"}},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if !model.Frozen() {
		t.Error("composed model should be frozen")
	}
	if model.NodeCount() != 5 || model.BondCount() != 4 {
		t.Errorf("got %d nodes %d bonds, want 5 and 4", model.NodeCount(), model.BondCount())
	}
	if model.Disconnected() {
		t.Error("chain should be connected")
	}
	if v, ok := model.GetNode(hostNS + "a").Value(); !ok || v != 10 {
		t.Errorf("value of a = %v, %v", v, ok)
	}

	mid := model.GetNode(hostNS + "ID-00000001")
	if mid.Type() != bondgraph.OneResistanceNode {
		t.Errorf("Type() = %s, want OneResistanceNode", mid.Type())
	}
	qv := mid.QuantityValues()
	if len(qv) != 1 || qv[0].Name != "resistance" || qv[0].Value != 2 {
		t.Errorf("QuantityValues() = %+v", qv)
	}
}

func TestCompose_Grouping(t *testing.T) {
	// c1 appears twice but not contiguously, so it is merged twice.
	c := NewComposer(newRegistry(t))
	model, err := c.Compose(context.Background(), &Source{
		Components: concat(rows("c1", "segment", "a", "b"), rows("c2", "segment", "b", "c"), rows("c1", "segment", "c", "d")),
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if model.NodeCount() != 7 || model.BondCount() != 6 {
		t.Errorf("got %d nodes %d bonds, want 7 and 6", model.NodeCount(), model.BondCount())
	}
}

func TestCompose_ComponentWithoutConnections(t *testing.T) {
	c := NewComposer(newRegistry(t))
	model, err := c.Compose(context.Background(), &Source{
		Components: []ComponentRow{{Model: host, Component: "c1", Template: tplNS + "segment"}},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if model.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", model.NodeCount())
	}
}

func TestCompose_SkipsUnknownTemplate(t *testing.T) {
	reg := metrics.NewRegistry()
	rec := logging.NewRecorder()
	c := NewComposer(newRegistry(t), WithMetrics(reg), WithLogger(rec))

	model, err := c.Compose(context.Background(), &Source{
		Components: concat(rows("c1", "missing", "a", "b"), rows("c2", "segment", "b", "c")),
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if model.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", model.NodeCount())
	}
	if got := counter(t, reg.ComponentsSkippedTotal); got != 1 {
		t.Errorf("components skipped = %v, want 1", got)
	}
	warnings := rec.Find("component skipped, unknown template")
	if len(warnings) != 1 || warnings[0].Fields["component_id"] != "c1" {
		t.Errorf("unexpected warnings: %+v", warnings)
	}
}

func TestCompose_SkipsUnknownNodes(t *testing.T) {
	reg := metrics.NewRegistry()
	c := NewComposer(newRegistry(t), WithMetrics(reg))

	_, err := c.Compose(context.Background(), &Source{
		Components: rows("c1", "segment", "a", "b"),
		Values:     []ValueRow{{Node: hostNS + "nowhere", Value: "1 kPa"}},
		Quantities: []QuantityRow{{Node: hostNS + "nowhere", Quantity: tplNS + "resistance", Value: "1 kPa.s/L"}},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if got := counter(t, reg.RowsSkippedTotal.WithLabelValues("value")); got != 1 {
		t.Errorf("value rows skipped = %v, want 1", got)
	}
	if got := counter(t, reg.RowsSkippedTotal.WithLabelValues("quantity")); got != 1 {
		t.Errorf("quantity rows skipped = %v, want 1", got)
	}
}

func TestCompose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     *Source
		wantErr error
		metric  string
	}{
		{
			name: "multiple models",
			src: &Source{Components: append(rows("c1", "segment", "a", "b"),
				ComponentRow{Model: hostNS + "other", Component: "c2", Template: tplNS + "segment"})},
			wantErr: bondgraph.ErrMultipleModels,
		},
		{
			name: "value unit mismatch",
			src: &Source{
				Components: rows("c1", "segment", "a", "b"),
				Values:     []ValueRow{{Node: hostNS + "a", Value: "10 L"}},
			},
			wantErr: bondgraph.ErrUnitMismatch,
			metric:  "value",
		},
		{
			name: "quantity unit mismatch",
			src: &Source{
				Components: rows("c1", "segment", "a", "b"),
				Quantities: []QuantityRow{{Node: hostNS + "ID-00000001", Quantity: tplNS + "resistance", Value: "2 kPa"}},
			},
			wantErr: bondgraph.ErrUnitMismatch,
			metric:  "quantity",
		},
		{
			name: "unparseable value",
			src: &Source{
				Components: rows("c1", "segment", "a", "b"),
				Values:     []ValueRow{{Node: hostNS + "a", Value: "ten kPa"}},
			},
			wantErr: units.ErrValueParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := metrics.NewRegistry()
			c := NewComposer(newRegistry(t), WithMetrics(reg))

			model, err := c.Compose(context.Background(), tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if model != nil {
				t.Error("failed composition must not return a model")
			}
			if got := counter(t, reg.CompositionsTotal.WithLabelValues(metrics.StatusError)); got != 1 {
				t.Errorf("failed compositions = %v, want 1", got)
			}
			if tt.metric != "" {
				if got := counter(t, reg.UnitMismatchesTotal.WithLabelValues(tt.metric)); got != 1 {
					t.Errorf("unit mismatches = %v, want 1", got)
				}
			}
		})
	}
}

func TestCompose_StrictPorts(t *testing.T) {
	c := NewComposer(newRegistry(t), WithPortPolicy(bondgraph.PortPolicyStrict))

	// The second component binds its v_in port (kPa) to the first
	// component's u_mid copy (L/s).
	_, err := c.Compose(context.Background(), &Source{
		Components: concat(rows("c1", "segment", "a", "b"), rows("c2", "segment", "ID-00000001", "c")),
	})
	if !errors.Is(err, bondgraph.ErrPortMismatch) {
		t.Errorf("error = %v, want ErrPortMismatch", err)
	}
}

func TestCompose_Empty(t *testing.T) {
	c := NewComposer(nil)
	for _, src := range []*Source{nil, {}} {
		model, err := c.Compose(context.Background(), src)
		if err != nil || model != nil {
			t.Errorf("Compose(%v) = %v, %v; want nil, nil", src, model, err)
		}
	}
}

func TestCompose_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewComposer(newRegistry(t)).Compose(ctx, &Source{Components: rows("c1", "segment", "a", "b")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
