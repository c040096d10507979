// Package compose drives the composition of a model from a stream of
// component rows and value assignments.
package compose

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

// ComponentRow binds one port of one component. Rows of the same component
// must be adjacent; a row with a different Component closes the group.
// Port and Node may be empty for a component without connections.
type ComponentRow struct {
	Model     string
	Name      string
	Component string
	Template  string
	Port      string
	Node      string
}

// ValueRow assigns a node's direct value, e.g. "13.3 kPa".
type ValueRow struct {
	Node  string
	Value string
}

// QuantityRow assigns one of a node's quantity values.
type QuantityRow struct {
	Node     string
	Quantity string
	Name     string
	Value    string
}

// Source is everything needed to compose one model. All terms are full URIs.
type Source struct {
	Components []ComponentRow
	Values     []ValueRow
	Quantities []QuantityRow

	// Namespaces become the model's display prefixes.
	Namespaces *namespace.Map
}

// Composer builds models from templates held in a registry.
type Composer struct {
	registry *bondgraph.TemplateRegistry
	units    *units.Registry
	policy   bondgraph.PortPolicy
	logger   logging.Logger
	metrics  *metrics.Registry
}

// Option configures a Composer.
type Option func(*Composer)

// WithUnits sets the unit registry of composed models.
func WithUnits(reg *units.Registry) Option {
	return func(c *Composer) { c.units = reg }
}

// WithPortPolicy sets the port policy of composed models.
func WithPortPolicy(p bondgraph.PortPolicy) Option {
	return func(c *Composer) { c.policy = p }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Composer) { c.metrics = reg }
}

// NewComposer creates a composer reading templates from registry.
func NewComposer(registry *bondgraph.TemplateRegistry, opts ...Option) *Composer {
	c := &Composer{registry: registry}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = bondgraph.NewTemplateRegistry()
	}
	if c.units == nil {
		c.units = units.NewRegistry()
	}
	c.logger = logging.OrNop(c.logger).With(logging.Component("compose"))
	return c
}

// Compose merges every component group into a new model, applies direct
// values and then quantity values, and freezes the model.
//
// Components whose template is not registered are skipped, as are value rows
// naming unknown nodes. Any other failure aborts the composition and no model
// is returned. A source without component rows yields a nil model.
func (c *Composer) Compose(ctx context.Context, src *Source) (*bondgraph.Model, error) {
	start := time.Now()
	model, err := c.compose(ctx, src)
	elapsed := time.Since(start)
	c.metrics.RecordComposition(elapsed, err)

	if err != nil {
		c.logger.Error("composition failed", logging.Error(err), logging.Latency(elapsed))
		return nil, err
	}
	if model != nil {
		c.logger.Info("model composed",
			logging.ModelURI(model.URI()),
			logging.Int("nodes", model.NodeCount()),
			logging.Int("bonds", model.BondCount()),
			logging.Bool("disconnected", model.Disconnected()),
			logging.Latency(elapsed))
	}
	return model, nil
}

func (c *Composer) compose(ctx context.Context, src *Source) (*bondgraph.Model, error) {
	if src == nil {
		return nil, nil
	}

	model, err := c.mergeComponents(ctx, src)
	if err != nil || model == nil {
		return nil, err
	}
	if err := c.applyValues(ctx, model, src.Values); err != nil {
		return nil, err
	}
	if err := c.applyQuantities(ctx, model, src.Quantities); err != nil {
		return nil, err
	}

	model.Freeze()
	return model, nil
}

// group is one component's rows.
type group struct {
	component string
	template  string
	ports     map[string]string
}

func (c *Composer) mergeComponents(ctx context.Context, src *Source) (*bondgraph.Model, error) {
	var (
		model   *bondgraph.Model
		current *group
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		g := current
		current = nil
		return c.merge(model, g)
	}

	for _, row := range src.Components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if model == nil {
			model = bondgraph.NewModel(row.Model,
				bondgraph.WithName(row.Name),
				bondgraph.WithUnits(c.units),
				bondgraph.WithNamespaces(src.Namespaces),
				bondgraph.WithPortPolicy(c.policy),
				bondgraph.WithLogger(c.logger),
				bondgraph.WithMetrics(c.metrics))
		} else if row.Model != model.URI() {
			return nil, bondgraph.NewError("compose").Model(row.Model).
				Context("already composing %s", model.URI()).
				Cause(bondgraph.ErrMultipleModels).Err()
		}

		if current != nil && current.component != row.Component {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if current == nil {
			current = &group{component: row.Component, template: row.Template, ports: make(map[string]string)}
		}
		if row.Port != "" {
			current.ports[row.Port] = row.Node
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return model, nil
}

func (c *Composer) merge(model *bondgraph.Model, g *group) error {
	t := c.registry.GetTemplate(g.template)
	if t == nil {
		c.metrics.RecordComponentSkipped()
		c.logger.Warn("component skipped, unknown template",
			logging.String("component_id", g.component),
			logging.TemplateURI(g.template))
		return nil
	}
	if err := model.MergeTemplate(t, g.ports); err != nil {
		return fmt.Errorf("component %s: %w", g.component, err)
	}
	return nil
}

func (c *Composer) applyValues(ctx context.Context, model *bondgraph.Model, rows []ValueRow) error {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := model.GetNode(row.Node)
		if n == nil {
			c.skipRow("value", row.Node)
			continue
		}
		if err := n.SetValue(row.Value); err != nil {
			c.recordMismatch(err, "value")
			return err
		}
	}
	return nil
}

func (c *Composer) applyQuantities(ctx context.Context, model *bondgraph.Model, rows []QuantityRow) error {
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := model.GetNode(row.Node)
		if n == nil {
			c.skipRow("quantity", row.Node)
			continue
		}
		if n.Quantity(row.Quantity) == nil {
			c.logger.Debug("quantity not declared by node",
				logging.NodeURI(row.Node),
				logging.String("quantity", row.Quantity))
		}
		name := row.Name
		if name == "" {
			name = row.Quantity
		}
		if err := n.SetQuantityValue(row.Quantity, name, row.Value); err != nil {
			c.recordMismatch(err, "quantity")
			return err
		}
	}
	return nil
}

func (c *Composer) skipRow(kind, node string) {
	c.metrics.RecordSkippedRow(kind)
	c.logger.Warn("row skipped, unknown node", logging.String("kind", kind), logging.NodeURI(node))
}

func (c *Composer) recordMismatch(err error, target string) {
	if bondgraph.IsUnitMismatch(err) {
		c.metrics.RecordUnitMismatch(target)
	}
}
