package algorithms

import (
	"fmt"
)

// IsConnected reports whether every vertex is reachable from every other when
// edges are treated as undirected. An empty graph is not connected.
func IsConnected(graph Graph) bool {
	vertices := graph.Vertices()
	if len(vertices) == 0 {
		return false
	}
	return len(ConnectedComponents(graph).Components) == 1
}

// IsDAG checks if the graph contains no directed cycles
func IsDAG(graph Graph) bool {
	_, err := TopologicalSort(graph)
	return err == nil
}

// TopologicalSort returns vertices in topological order using Kahn's
// algorithm. For every edge u->v, u comes before v. Ties are broken by
// vertex order.
func TopologicalSort(graph Graph) ([]string, error) {
	vertices := graph.Vertices()

	inDegree := make(map[string]int, len(vertices))
	for _, id := range vertices {
		inDegree[id] = 0
	}
	for _, id := range vertices {
		for _, next := range graph.Successors(id) {
			inDegree[next]++
		}
	}

	queue := make([]string, 0)
	for _, id := range vertices {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(vertices))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, next := range graph.Successors(current) {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sorted) != len(vertices) {
		return nil, fmt.Errorf("graph contains cycles, cannot perform topological sort")
	}
	return sorted, nil
}

// Sources returns the vertices with no incoming edges, in vertex order.
func Sources(graph Graph) []string {
	var out []string
	for _, id := range graph.Vertices() {
		if len(graph.Predecessors(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns the vertices with no outgoing edges, in vertex order.
func Sinks(graph Graph) []string {
	var out []string
	for _, id := range graph.Vertices() {
		if len(graph.Successors(id)) == 0 {
			out = append(out, id)
		}
	}
	return out
}
