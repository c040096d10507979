package algorithms

import (
	"container/list"
)

// Component is one weakly connected component
type Component struct {
	ID    int
	Nodes []string
	Size  int
}

// ComponentResult contains the components of a graph
type ComponentResult struct {
	Components    []*Component
	NodeComponent map[string]int // Vertex id -> Component ID
}

// Largest returns the biggest component, or nil for an empty graph.
func (r *ComponentResult) Largest() *Component {
	var best *Component
	for _, c := range r.Components {
		if best == nil || c.Size > best.Size {
			best = c
		}
	}
	return best
}

// ConnectedComponents finds all weakly connected components, treating every
// edge as undirected. Components are numbered in order of their first vertex.
func ConnectedComponents(graph Graph) *ComponentResult {
	visited := make(map[string]bool)
	nodeComponent := make(map[string]int)
	components := make([]*Component, 0)
	componentID := 0

	// BFS to find each component
	for _, start := range graph.Vertices() {
		if visited[start] {
			continue
		}

		component := &Component{
			ID:    componentID,
			Nodes: make([]string, 0),
		}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			id, ok := queue.Remove(queue.Front()).(string)
			if !ok {
				continue
			}
			component.Nodes = append(component.Nodes, id)
			nodeComponent[id] = componentID

			for _, next := range graph.Successors(id) {
				if !visited[next] {
					visited[next] = true
					queue.PushBack(next)
				}
			}
			for _, prev := range graph.Predecessors(id) {
				if !visited[prev] {
					visited[prev] = true
					queue.PushBack(prev)
				}
			}
		}

		component.Size = len(component.Nodes)
		components = append(components, component)
		componentID++
	}

	return &ComponentResult{
		Components:    components,
		NodeComponent: nodeComponent,
	}
}
