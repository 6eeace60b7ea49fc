package routing

import (
	"time"

	"route_planner/pkg/graph"
)

// AStar computes the shortest distance and path from source to target,
// ordering the frontier by g(v) + h(v, target). The result is exact when the
// heuristic is consistent (see Heuristic).
func AStar(g *graph.Graph, source, target uint32, opts ...Option) (Stats, error) {
	if st, err := checkEndpoints(AlgAStar, g, source, target); err != nil {
		return st, err
	}
	start := time.Now()
	if source == target {
		return trivial(AlgAStar, source, start), nil
	}
	h := buildOptions(opts).heuristic

	n := g.NumNodes()
	dist := newDistances(n)
	parent := newParents(n)
	closed := make([]bool, n)
	pq := newMinHeap(64)

	dist[source] = 0
	pq.Push(source, h(g, source, target))

	expanded := 0
	for pq.Len() > 0 {
		u := pq.Pop().Node
		if closed[u] {
			continue
		}
		closed[u] = true
		expanded++
		if u == target {
			break
		}

		du := dist[u]
		for _, e := range g.OutEdges(u) {
			v := e.To
			if closed[v] {
				continue
			}
			nd := du + e.Weight
			if nd < dist[v] {
				dist[v] = nd
				parent[v] = u
				pq.Push(v, nd+h(g, v, target))
			}
		}
	}

	st := Stats{
		Algorithm:     AlgAStar,
		Distance:      dist[target],
		NodesExpanded: expanded,
	}
	if dist[target] < inf {
		st.Path = reconstructPath(parent, source, target)
	}
	st.Elapsed = time.Since(start)
	return st, nil
}
