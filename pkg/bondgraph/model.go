package bondgraph

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

// PortPolicy decides what happens when a merge identifies a template port
// with a node that already exists in the host model.
type PortPolicy int

const (
	// PortPolicyLenient reuses the existing host node without any check.
	PortPolicyLenient PortPolicy = iota
	// PortPolicyStrict rejects the merge when the existing node's declared
	// type or units differ from the port's.
	PortPolicyStrict
)

// String returns the policy name.
func (p PortPolicy) String() string {
	switch p {
	case PortPolicyLenient:
		return "lenient"
	case PortPolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePortPolicy converts a policy name. An empty name is lenient.
func ParsePortPolicy(s string) (PortPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return PortPolicyLenient, nil
	case "strict":
		return PortPolicyStrict, nil
	default:
		return PortPolicyLenient, fmt.Errorf("unknown port policy %q", s)
	}
}

// Option configures a Model.
type Option func(*Model)

// WithName sets the display name.
func WithName(name string) Option {
	return func(m *Model) { m.name = name }
}

// WithUnits sets the unit registry used to parse units and values.
func WithUnits(reg *units.Registry) Option {
	return func(m *Model) { m.units = reg }
}

// WithNamespaces sets the namespace map used for display forms. The map is
// copied.
func WithNamespaces(ns *namespace.Map) Option {
	return func(m *Model) {
		if ns != nil {
			m.namespaces = ns.Copy()
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Model) { m.metrics = reg }
}

// WithPortPolicy sets the merge port policy.
func WithPortPolicy(p PortPolicy) Option {
	return func(m *Model) { m.portPolicy = p }
}

// Model is a bond graph under construction. It starts in the building state
// and becomes permanently read-only once frozen.
//
// A Model is not safe for concurrent mutation. After Freeze it may be read
// from any number of goroutines.
type Model struct {
	uri        string
	name       string
	ns         string
	units      *units.Registry
	namespaces *namespace.Map
	logger     logging.Logger
	metrics    *metrics.Registry
	portPolicy PortPolicy

	nodes     []*Node
	nodeIndex map[string]int
	bonds     []*Bond
	bondIndex map[string]int
	counter   int

	frozen       bool
	graph        *GraphView
	disconnected bool
}

// NewModel creates an empty model in the building state.
func NewModel(uri string, opts ...Option) *Model {
	m := &Model{
		uri:       uri,
		ns:        namespace.Base(uri),
		nodeIndex: make(map[string]int),
		bondIndex: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.name == "" {
		m.name = namespace.LocalName(uri)
	}
	if m.units == nil {
		m.units = units.NewRegistry()
	}
	if m.namespaces == nil {
		m.namespaces = namespace.Defaults()
	}
	if _, ok := m.namespaces.Namespace(""); !ok {
		m.namespaces.Add("", m.ns)
	}
	m.logger = logging.OrNop(m.logger).With(logging.ModelURI(uri))

	return m
}

func (m *Model) URI() string                   { return m.uri }
func (m *Model) Name() string                  { return m.name }
func (m *Model) Namespace() string             { return m.ns }
func (m *Model) UnitRegistry() *units.Registry { return m.units }
func (m *Model) Namespaces() *namespace.Map    { return m.namespaces }
func (m *Model) PortPolicy() PortPolicy        { return m.portPolicy }
func (m *Model) Frozen() bool                  { return m.frozen }
func (m *Model) Updatable() bool               { return !m.frozen }
func (m *Model) NodeCount() int                { return len(m.nodes) }
func (m *Model) BondCount() int                { return len(m.bonds) }

// DisplayID returns the short display form of a URI: its CURIE, without the
// leading ':' for the model's own namespace, or its local name when no prefix
// applies.
func (m *Model) DisplayID(uri string) string {
	c := m.namespaces.Curie(uri)
	switch {
	case strings.HasPrefix(c, ":"):
		return c[1:]
	case c == uri:
		return namespace.LocalName(uri)
	default:
		return c
	}
}

func (m *Model) checkUpdatable(op string) error {
	if !m.frozen {
		return nil
	}
	m.metrics.RecordFrozenMutation(op)
	m.logger.Debug("mutation rejected on frozen model", logging.Operation(op))
	return FrozenError(op, m.uri)
}

// mint returns a fresh URI under the model's namespace.
func (m *Model) mint() string {
	m.counter++
	return fmt.Sprintf("%sID-%08d", m.ns, m.counter)
}

// AddNode creates and registers a node. Adding a URI that is already present
// replaces that node in place; bonds and neighbours that referred to the old
// node are moved onto the replacement.
func (m *Model) AddNode(uri, nodeType, unitsExpr, label string, properties map[string]string) (*Node, error) {
	if err := m.checkUpdatable("add_node"); err != nil {
		return nil, err
	}

	u, err := m.units.ParseUnits(unitsExpr)
	if err != nil {
		return nil, NewError("add_node").Node(uri).Cause(err).Err()
	}

	n := newNode(m.units, uri, nodeType, u, label, properties)
	m.putNode(n)
	return n, nil
}

func (m *Model) putNode(n *Node) {
	if i, ok := m.nodeIndex[n.uri]; ok {
		old := m.nodes[i]
		m.nodes[i] = n
		m.rebind(old, n)
		m.logger.Debug("node replaced", logging.NodeURI(n.uri))
	} else {
		m.nodeIndex[n.uri] = len(m.nodes)
		m.nodes = append(m.nodes, n)
		m.logger.Debug("node added", logging.NodeURI(n.uri))
	}
	m.metrics.RecordNodeAdded()
}

// rebind moves the bonds and adjacency of old onto n.
func (m *Model) rebind(old, n *Node) {
	swap := func(x *Node) *Node {
		if x == old {
			return n
		}
		return x
	}
	for _, s := range old.sources {
		n.AddSource(swap(s))
	}
	for _, t := range old.targets {
		n.AddTarget(swap(t))
	}
	for _, other := range m.nodes {
		if other != n {
			other.replaceNeighbour(old, n)
		}
	}
	for _, b := range m.bonds {
		b.source, b.target = swap(b.source), swap(b.target)
	}
}

// AddBond creates a bond between two registered nodes. When either endpoint
// is unknown no bond is created and both results are nil.
func (m *Model) AddBond(uri, sourceURI, targetURI string) (*Bond, error) {
	if err := m.checkUpdatable("add_bond"); err != nil {
		return nil, err
	}

	source, target := m.GetNode(sourceURI), m.GetNode(targetURI)
	if source == nil || target == nil {
		m.metrics.RecordBond(true)
		m.logger.Debug("bond skipped, unknown endpoint",
			logging.BondURI(uri),
			logging.String("source", sourceURI),
			logging.String("target", targetURI))
		return nil, nil
	}

	b := newBond(uri, source, target)
	if i, ok := m.bondIndex[uri]; ok {
		m.bonds[i] = b
	} else {
		m.bondIndex[uri] = len(m.bonds)
		m.bonds = append(m.bonds, b)
	}
	m.metrics.RecordBond(false)
	return b, nil
}

// GetNode returns the node with the given URI, or nil.
func (m *Model) GetNode(uri string) *Node {
	if i, ok := m.nodeIndex[uri]; ok {
		return m.nodes[i]
	}
	return nil
}

// HasNode reports whether a node with the given URI exists.
func (m *Model) HasNode(uri string) bool {
	_, ok := m.nodeIndex[uri]
	return ok
}

// GetBond returns the bond with the given URI, or nil.
func (m *Model) GetBond(uri string) *Bond {
	if i, ok := m.bondIndex[uri]; ok {
		return m.bonds[i]
	}
	return nil
}

// Nodes returns the nodes in insertion order.
func (m *Model) Nodes() []*Node {
	return append([]*Node(nil), m.nodes...)
}

// Bonds returns the bonds in insertion order.
func (m *Model) Bonds() []*Bond {
	return append([]*Bond(nil), m.bonds...)
}

// Freeze makes the model read-only and builds its graph view. Freezing a
// frozen model does nothing.
func (m *Model) Freeze() {
	if m.frozen {
		return
	}
	timer := logging.StartTimer(m.logger, "model frozen")

	m.frozen = true
	m.disconnected = m.computeDisconnected()
	m.graph = m.buildGraph()

	m.metrics.RecordFreeze(len(m.nodes), len(m.bonds), m.disconnected)
	timer.End(
		logging.Int("nodes", len(m.nodes)),
		logging.Int("bonds", len(m.bonds)),
		logging.Bool("disconnected", m.disconnected))
}

// Disconnected reports whether the model, viewed as an undirected graph, is
// empty or has more than one connected component.
func (m *Model) Disconnected() bool {
	if m.frozen {
		return m.disconnected
	}
	return m.computeDisconnected()
}
