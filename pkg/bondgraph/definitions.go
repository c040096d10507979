package bondgraph

import "github.com/dd0wney/cluso-bondgraph/pkg/namespace"

// Node types of the bond-graph ontology.
var (
	OneNode           = namespace.BG.Term("OneNode")
	ZeroNode          = namespace.BG.Term("ZeroNode")
	OneResistanceNode = namespace.BG.Term("OneResistanceNode")
	ZeroStorageNode   = namespace.BG.Term("ZeroStorageNode")
)

// baseTypes maps a parametric node type to the structural type it reports
// while none of its quantities has a value.
var baseTypes = map[string]string{
	OneResistanceNode: OneNode,
	ZeroStorageNode:   ZeroNode,
}

// Placeholders that may appear in equation templates.
const (
	PlaceholderNode           = "{NODE}"
	PlaceholderNodeDelta      = "{NODE_DELTA}"
	PlaceholderCharge         = "{CHARGE}"
	PlaceholderTime           = "{TIME}"
	PlaceholderElastance      = "{ELASTANCE}"
	PlaceholderResidualCharge = "{RESIDUAL_CHARGE}"
	PlaceholderResistance     = "{RESISTANCE}"
)

// equations are sympy-style templates consumed by an external equation
// builder. They are never evaluated here.
var equations = map[string][]string{
	ZeroStorageNode: {
		"Eq(Derivative({CHARGE}, {TIME}), {NODE_DELTA})",
		"Eq({NODE}, {ELASTANCE}*({CHARGE} - {RESIDUAL_CHARGE}))",
	},
	OneResistanceNode: {
		"Eq({NODE}, ({NODE_DELTA})/{RESISTANCE})",
	},
}

// BaseType returns the structural fallback for a node type, or the type
// itself when it has none.
func BaseType(nodeType string) string {
	if base, ok := baseTypes[nodeType]; ok {
		return base
	}
	return nodeType
}

// Equations returns the equation templates registered for a node type.
func Equations(nodeType string) []string {
	return append([]string(nil), equations[nodeType]...)
}
