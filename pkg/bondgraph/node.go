package bondgraph

import (
	"maps"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

// QuantityValue is a value assigned to one of a node's declared quantities.
type QuantityValue struct {
	Quantity *Quantity
	Name     string // local name of the parameter, e.g. "resistance"
	Value    float64
}

type assignment struct {
	name  string
	value float64
}

// Node is a typed vertex of a bond graph.
//
// Sources and targets are kept in insertion order without duplicates, so a
// pair of nodes joined by several bonds appears once in each list.
type Node struct {
	uri          string
	declaredType string
	units        units.Units
	label        string
	properties   map[string]string

	quantities  []*Quantity
	quantityIdx map[string]int
	assignments map[string]assignment
	value       *units.Value

	sources   []*Node
	targets   []*Node
	sourceSet map[*Node]struct{}
	targetSet map[*Node]struct{}

	reg *units.Registry
}

func newNode(reg *units.Registry, uri, nodeType string, u units.Units, label string, properties map[string]string) *Node {
	props := make(map[string]string, len(properties))
	maps.Copy(props, properties)
	return &Node{
		uri:          uri,
		declaredType: nodeType,
		units:        u,
		label:        label,
		properties:   props,
		quantityIdx:  make(map[string]int),
		assignments:  make(map[string]assignment),
		sourceSet:    make(map[*Node]struct{}),
		targetSet:    make(map[*Node]struct{}),
		reg:          reg,
	}
}

// copyAs returns a fresh instance of n bound to uri. Type, units, label and
// declared quantities are shared; properties are copied; quantity values,
// the direct value and adjacency are not carried over.
func (n *Node) copyAs(uri string, reg *units.Registry) *Node {
	c := newNode(reg, uri, n.declaredType, n.units, n.label, n.properties)
	c.quantities = append(c.quantities, n.quantities...)
	maps.Copy(c.quantityIdx, n.quantityIdx)
	return c
}

func (n *Node) URI() string          { return n.uri }
func (n *Node) DeclaredType() string { return n.declaredType }
func (n *Node) Units() units.Units   { return n.units }
func (n *Node) Label() string        { return n.label }

// Name returns the local fragment of the node URI.
func (n *Node) Name() string {
	return namespace.LocalName(n.uri)
}

// Type returns the effective type: the structural base type while no
// quantity has a value, otherwise the declared type.
func (n *Node) Type() string {
	if len(n.assignments) == 0 {
		return BaseType(n.declaredType)
	}
	return n.declaredType
}

// Equations returns the equation templates for the node's effective type.
func (n *Node) Equations() []string {
	return Equations(n.Type())
}

// Properties returns a copy of the property bag.
func (n *Node) Properties() map[string]string {
	return maps.Clone(n.properties)
}

// Property returns a single property.
func (n *Node) Property(key string) (string, bool) {
	v, ok := n.properties[key]
	return v, ok
}

// AddQuantity declares q on the node. Redeclaring a URI replaces the earlier
// declaration in place.
func (n *Node) AddQuantity(q *Quantity) {
	if i, ok := n.quantityIdx[q.URI()]; ok {
		n.quantities[i] = q
		return
	}
	n.quantityIdx[q.URI()] = len(n.quantities)
	n.quantities = append(n.quantities, q)
}

// Quantity returns a declared quantity.
func (n *Node) Quantity(uri string) *Quantity {
	if i, ok := n.quantityIdx[uri]; ok {
		return n.quantities[i]
	}
	return nil
}

// Quantities returns the declared quantities in declaration order.
func (n *Node) Quantities() []*Quantity {
	return append([]*Quantity(nil), n.quantities...)
}

// SetQuantityValue assigns a value to a declared quantity. It does nothing
// when quantityURI has not been declared. The literal's units must equal the
// quantity's units; on mismatch the stored value is left unchanged.
func (n *Node) SetQuantityValue(quantityURI, name, literal string) error {
	q := n.Quantity(quantityURI)
	if q == nil {
		return nil
	}

	v, err := n.reg.ParseValue(literal)
	if err != nil {
		return NewError("set_quantity_value").Node(n.uri).Field(quantityURI).Cause(err).Err()
	}
	if !v.Units().Equal(q.Units()) {
		return NewError("set_quantity_value").Node(n.uri).Field(quantityURI).
			Context("got %s, want %s", v.Units(), q.Units()).
			Cause(ErrUnitMismatch).Err()
	}

	n.assignments[quantityURI] = assignment{name: name, value: v.Scalar()}
	return nil
}

// QuantityValues returns the assigned quantity values in declaration order.
func (n *Node) QuantityValues() []QuantityValue {
	out := make([]QuantityValue, 0, len(n.assignments))
	for _, q := range n.quantities {
		if a, ok := n.assignments[q.URI()]; ok {
			out = append(out, QuantityValue{
				Quantity: q,
				Name:     namespace.LocalName(a.name),
				Value:    a.value,
			})
		}
	}
	return out
}

// SetValue assigns the node's direct value. The literal's units must equal the
// node's units. The first assignment adopts the parsed value; later ones only
// overwrite the scalar.
func (n *Node) SetValue(literal string) error {
	v, err := n.reg.ParseValue(literal)
	if err != nil {
		return NewError("set_value").Node(n.uri).Cause(err).Err()
	}
	if !v.Units().Equal(n.units) {
		return NewError("set_value").Node(n.uri).
			Context("got %s, want %s", v.Units(), n.units).
			Cause(ErrUnitMismatch).Err()
	}

	if n.value == nil {
		n.value = v
	} else {
		n.value.Update(v.Scalar())
	}
	return nil
}

// Value returns the direct value's scalar, if one has been assigned.
func (n *Node) Value() (float64, bool) {
	if n.value == nil {
		return 0, false
	}
	return n.value.Scalar(), true
}

// AddSource records that other bonds into n.
func (n *Node) AddSource(other *Node) {
	if _, ok := n.sourceSet[other]; ok {
		return
	}
	n.sourceSet[other] = struct{}{}
	n.sources = append(n.sources, other)
}

// AddTarget records that n bonds into other.
func (n *Node) AddTarget(other *Node) {
	if _, ok := n.targetSet[other]; ok {
		return
	}
	n.targetSet[other] = struct{}{}
	n.targets = append(n.targets, other)
}

// replaceNeighbour swaps old for repl in both adjacency lists, keeping its
// position.
func (n *Node) replaceNeighbour(old, repl *Node) {
	if _, ok := n.sourceSet[old]; ok {
		delete(n.sourceSet, old)
		n.sourceSet[repl] = struct{}{}
		n.sources[slices.Index(n.sources, old)] = repl
	}
	if _, ok := n.targetSet[old]; ok {
		delete(n.targetSet, old)
		n.targetSet[repl] = struct{}{}
		n.targets[slices.Index(n.targets, old)] = repl
	}
}

func (n *Node) Sources() []*Node { return append([]*Node(nil), n.sources...) }
func (n *Node) Targets() []*Node { return append([]*Node(nil), n.targets...) }

// Delta returns the flow balance expression "s1 + s2 - t1 - t2" built from
// the local names of the node's sources and targets.
func (n *Node) Delta() string {
	srcs := make([]string, 0, len(n.sources))
	for _, s := range n.sources {
		srcs = append(srcs, s.Name())
	}
	tgts := make([]string, 0, len(n.targets))
	for _, t := range n.targets {
		tgts = append(tgts, t.Name())
	}

	in := strings.Join(srcs, " + ")
	out := strings.Join(tgts, " - ")
	switch {
	case in != "" && out != "":
		return in + " - " + out
	case out != "":
		return "- " + out
	default:
		return in
	}
}
