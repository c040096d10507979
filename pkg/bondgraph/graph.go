package bondgraph

import (
	"fmt"
	"maps"

	"github.com/dd0wney/cluso-bondgraph/pkg/algorithms"
)

// Vertex is a node as exported in a graph view.
type Vertex struct {
	ID         string
	URI        string
	Attributes map[string]string
}

// Edge is a bond as exported in a graph view. Source and Target are vertex IDs.
type Edge struct {
	ID     string
	URI    string
	Source string
	Target string
}

// GraphView is a read-only snapshot of a model as a directed graph keyed by
// display ids. Vertices and edges keep the model's insertion order. Every node
// has its own vertex id: when two nodes share a display id, the later one is
// keyed by its full URI.
type GraphView struct {
	vertices []Vertex
	edges    []Edge
	index    map[string]int
	adj      *algorithms.Adjacency
}

func (g *GraphView) Vertices() []Vertex { return append([]Vertex(nil), g.vertices...) }
func (g *GraphView) Edges() []Edge      { return append([]Edge(nil), g.edges...) }

// Vertex looks up a vertex by its id.
func (g *GraphView) Vertex(id string) (Vertex, bool) {
	i, ok := g.index[id]
	if !ok {
		return Vertex{}, false
	}
	v := g.vertices[i]
	v.Attributes = maps.Clone(v.Attributes)
	return v, true
}

// Adjacency exposes the view to the graph algorithms.
func (g *GraphView) Adjacency() algorithms.Graph { return g.adj }

// Components returns the weakly connected components of the view.
func (g *GraphView) Components() *algorithms.ComponentResult {
	return algorithms.ConnectedComponents(g.adj)
}

// Acyclic reports whether no directed cycle passes through the bonds.
func (g *GraphView) Acyclic() bool {
	return algorithms.IsDAG(g.adj)
}

// Sources returns the ids of vertices no bond points into.
func (g *GraphView) Sources() []string { return algorithms.Sources(g.adj) }

// Sinks returns the ids of vertices no bond leaves.
func (g *GraphView) Sinks() []string { return algorithms.Sinks(g.adj) }

// Order returns the vertex ids in bond order. It fails when the bonds form a
// cycle.
func (g *GraphView) Order() ([]string, error) { return algorithms.TopologicalSort(g.adj) }

// Graph returns the model's graph view, freezing the model first if needed.
func (m *Model) Graph() *GraphView {
	m.Freeze()
	return m.graph
}

// bondAdjacency builds the URI-keyed adjacency over the current bonds. Every
// node is a vertex even when nothing bonds to it.
func (m *Model) bondAdjacency() *algorithms.Adjacency {
	adj := algorithms.NewAdjacency()
	for _, n := range m.nodes {
		adj.AddVertex(n.uri)
	}
	for _, b := range m.bonds {
		adj.AddEdge(b.source.uri, b.target.uri)
	}
	return adj
}

func (m *Model) computeDisconnected() bool {
	return !algorithms.IsConnected(m.bondAdjacency())
}

func (m *Model) buildGraph() *GraphView {
	g := &GraphView{
		vertices: make([]Vertex, 0, len(m.nodes)),
		edges:    make([]Edge, 0, len(m.bonds)),
		index:    make(map[string]int, len(m.nodes)),
		adj:      algorithms.NewAdjacency(),
	}

	ids := make(map[string]string, len(m.nodes))
	for _, n := range m.nodes {
		attrs := maps.Clone(n.properties)
		if attrs == nil {
			attrs = make(map[string]string, 2)
		}
		attrs["type"] = m.DisplayID(n.Type())
		if n.label != "" {
			attrs["label"] = n.label
		}

		id := g.vertexID(m.DisplayID(n.uri), n.uri)
		ids[n.uri] = id
		g.index[id] = len(g.vertices)
		g.vertices = append(g.vertices, Vertex{ID: id, URI: n.uri, Attributes: attrs})
		g.adj.AddVertex(id)
	}

	for _, b := range m.bonds {
		e := Edge{
			ID:     m.DisplayID(b.uri),
			URI:    b.uri,
			Source: ids[b.source.uri],
			Target: ids[b.target.uri],
		}
		g.edges = append(g.edges, e)
		g.adj.AddEdge(e.Source, e.Target)
	}
	return g
}

// vertexID picks the display id unless an earlier node already holds it, in
// which case the full URI keeps the ids distinct.
func (g *GraphView) vertexID(display, uri string) string {
	if _, taken := g.index[display]; !taken {
		return display
	}
	id := uri
	for i := 2; ; i++ {
		if _, taken := g.index[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s~%d", uri, i)
	}
}
