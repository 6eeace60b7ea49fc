package routing

import (
	"time"

	"route_planner/pkg/graph"
)

// side is the state of one direction of a bidirectional search. edges
// returns the arcs the side relaxes: out-edges forward, in-edges backward.
type side struct {
	dist   []float64
	parent []uint32
	closed []bool
	pq     *MinHeap
	edges  func(u uint32) []graph.Edge
}

func newSide(n int, edges func(u uint32) []graph.Edge) *side {
	return &side{
		dist:   newDistances(n),
		parent: newParents(n),
		closed: make([]bool, n),
		pq:     newMinHeap(64),
		edges:  edges,
	}
}

// dropClosed discards frontier entries whose node is already closed.
func (s *side) dropClosed() {
	for s.pq.Len() > 0 && s.closed[s.pq.Peek().Node] {
		s.pq.Pop()
	}
}

// BidirectionalAStar searches forward from source and backward from target
// at the same time and stops once the two frontiers prove that no meeting
// can beat the best one found.
//
// The backward side walks the graph's reverse adjacency, so directed graphs
// are handled; backward parents point toward target. The result is exact
// for a consistent heuristic. Frontier keys use the balanced potentials
// p_f(v) = (h(v,target) - h(v,source))/2 and p_b = -p_f, which keeps the
// stopping test minKey_f + minKey_b >= best sound for any consistent
// heuristic; with Zero it is plain bidirectional Dijkstra.
func BidirectionalAStar(g *graph.Graph, source, target uint32, opts ...Option) (Stats, error) {
	if st, err := checkEndpoints(AlgBidirectionalAStar, g, source, target); err != nil {
		return st, err
	}
	start := time.Now()
	if source == target {
		return trivial(AlgBidirectionalAStar, source, start), nil
	}

	h := buildOptions(opts).heuristic
	potential := func(v uint32) float64 {
		return (h(g, v, target) - h(g, v, source)) / 2
	}

	n := g.NumNodes()
	fwd, bwd := newSide(n, g.OutEdges), newSide(n, g.InEdges)

	fwd.dist[source] = 0
	fwd.pq.Push(source, potential(source))
	bwd.dist[target] = 0
	bwd.pq.Push(target, -potential(target))

	best := inf
	meet := noNode
	expanded := 0

	// expand closes the top of this side's frontier, relaxes its edges
	// and records any meeting with the other side. sign is +1 forward and
	// -1 backward.
	expand := func(this, other *side, sign float64) {
		u := this.pq.Pop().Node
		this.closed[u] = true
		expanded++

		du := this.dist[u]
		if other.closed[u] {
			if c := du + other.dist[u]; c < best {
				best, meet = c, u
			}
		}

		for _, e := range this.edges(u) {
			v := e.To
			if this.closed[v] {
				continue
			}
			nd := du + e.Weight
			if nd < this.dist[v] {
				this.dist[v] = nd
				this.parent[v] = u
				this.pq.Push(v, nd+sign*potential(v))
			}
			if other.closed[v] {
				if c := this.dist[v] + other.dist[v]; c < best {
					best, meet = c, v
				}
			}
		}
	}

	for {
		fwd.dropClosed()
		bwd.dropClosed()
		if fwd.pq.Len() == 0 || bwd.pq.Len() == 0 {
			break
		}
		if fwd.pq.PeekKey()+bwd.pq.PeekKey() >= best {
			break
		}
		expand(fwd, bwd, 1)
		expand(bwd, fwd, -1)
	}

	st := Stats{
		Algorithm:     AlgBidirectionalAStar,
		Distance:      best,
		NodesExpanded: expanded,
	}
	if meet != noNode {
		st.Path = joinPaths(fwd.parent, bwd.parent, source, meet, target)
		if st.Path == nil {
			st.Distance = inf
		}
	}
	st.Elapsed = time.Since(start)
	return st, nil
}

// joinPaths combines the forward chain source..meet with the backward chain
// meet..target. bwdParent[v] is the successor of v on its way to target.
func joinPaths(fwdParent, bwdParent []uint32, source, meet, target uint32) []uint32 {
	path := reconstructPath(fwdParent, source, meet)
	if path == nil {
		return nil
	}
	for v := meet; v != target; {
		v = bwdParent[v]
		if v == noNode || len(path) > len(bwdParent) {
			return nil
		}
		path = append(path, v)
	}
	return path
}
