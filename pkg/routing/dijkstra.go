package routing

import (
	"time"

	"route_planner/pkg/graph"
)

// Dijkstra computes the shortest distance and path from source to target
// using Dijkstra's algorithm with lazy deletion. Options are accepted for
// signature compatibility; the heuristic is ignored.
func Dijkstra(g *graph.Graph, source, target uint32, _ ...Option) (Stats, error) {
	if st, err := checkEndpoints(AlgDijkstra, g, source, target); err != nil {
		return st, err
	}
	start := time.Now()
	if source == target {
		return trivial(AlgDijkstra, source, start), nil
	}

	n := g.NumNodes()
	dist := newDistances(n)
	parent := newParents(n)
	pq := newMinHeap(64)

	dist[source] = 0
	pq.Push(source, 0)

	expanded := 0
	for pq.Len() > 0 {
		item := pq.Pop()
		u := item.Node
		if item.Key > dist[u] {
			continue // stale entry
		}
		expanded++
		if u == target {
			break
		}

		for _, e := range g.OutEdges(u) {
			nd := item.Key + e.Weight
			if nd < dist[e.To] {
				dist[e.To] = nd
				parent[e.To] = u
				pq.Push(e.To, nd)
			}
		}
	}

	st := Stats{
		Algorithm:     AlgDijkstra,
		Distance:      dist[target],
		NodesExpanded: expanded,
	}
	if dist[target] < inf {
		st.Path = reconstructPath(parent, source, target)
	}
	st.Elapsed = time.Since(start)
	return st, nil
}
