// Package algorithms provides structural analyses over directed graphs whose
// vertices are identified by strings.
package algorithms

// Graph is the read-only view the algorithms traverse. Vertices must return
// ids in a stable order; results follow that order.
type Graph interface {
	Vertices() []string
	Successors(id string) []string
	Predecessors(id string) []string
}

// Adjacency is a simple in-memory Graph.
type Adjacency struct {
	order []string
	out   map[string][]string
	in    map[string][]string
}

// NewAdjacency creates an empty adjacency graph.
func NewAdjacency() *Adjacency {
	return &Adjacency{
		out: make(map[string][]string),
		in:  make(map[string][]string),
	}
}

// AddVertex adds id if it is not already present.
func (a *Adjacency) AddVertex(id string) {
	if _, ok := a.out[id]; ok {
		return
	}
	a.order = append(a.order, id)
	a.out[id] = nil
	a.in[id] = nil
}

// AddEdge adds a directed edge, creating missing endpoints.
func (a *Adjacency) AddEdge(from, to string) {
	a.AddVertex(from)
	a.AddVertex(to)
	a.out[from] = append(a.out[from], to)
	a.in[to] = append(a.in[to], from)
}

func (a *Adjacency) Vertices() []string              { return a.order }
func (a *Adjacency) Successors(id string) []string   { return a.out[id] }
func (a *Adjacency) Predecessors(id string) []string { return a.in[id] }
