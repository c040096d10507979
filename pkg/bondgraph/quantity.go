package bondgraph

import (
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
)

// Quantity is a named, unit-typed parameter or state slot that nodes declare.
// Quantities are immutable and shared by pointer wherever the same URI recurs.
type Quantity struct {
	uri      string
	units    units.Units
	label    string
	variable string
}

// NewQuantity parses unitsExpr against reg. An empty label defaults to the
// URI and an empty variable name defaults to the label.
func NewQuantity(reg *units.Registry, uri, unitsExpr, label, variable string) (*Quantity, error) {
	u, err := reg.ParseUnits(unitsExpr)
	if err != nil {
		return nil, NewError("new_quantity").Field(uri).Cause(err).Err()
	}
	if label == "" {
		label = uri
	}
	if variable == "" {
		variable = label
	}
	return &Quantity{uri: uri, units: u, label: label, variable: variable}, nil
}

func (q *Quantity) URI() string          { return q.uri }
func (q *Quantity) Units() units.Units   { return q.units }
func (q *Quantity) Label() string        { return q.label }
func (q *Quantity) VariableName() string { return q.variable }
