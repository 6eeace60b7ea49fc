package graph

// Edge is a directed, weighted connection to another node.
type Edge struct {
	To     uint32
	Weight float64 // non-negative; units are whatever the loader produced (km, m, ...)
}

// Graph represents a directed graph in CSR (Compressed Sparse Row) format.
// It is immutable once built and safe for concurrent readers.
type Graph struct {
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Edges    []Edge    // len: NumEdges; per-node insertion order is preserved
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
	Names    []string  // len: NumNodes; may contain empty strings

	// Reverse adjacency, derived from Edges: BwdEdges[BwdFirstOut[v]:BwdFirstOut[v+1]]
	// are the edges entering v, with To naming the tail node.
	BwdFirstOut []uint32
	BwdEdges    []Edge
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.NodeLat)
}

// NumEdges returns the number of directed edges.
func (g *Graph) NumEdges() int {
	return len(g.Edges)
}

// HasNode reports whether u is a valid node index.
func (g *Graph) HasNode(u uint32) bool {
	return g != nil && int(u) < len(g.NodeLat)
}

// Coordinates returns the (lat, lon) pair of node u.
func (g *Graph) Coordinates(u uint32) (lat, lon float64) {
	return g.NodeLat[u], g.NodeLon[u]
}

// Name returns the display name of node u, or "" if the graph carries no names.
func (g *Graph) Name(u uint32) string {
	if int(u) >= len(g.Names) {
		return ""
	}
	return g.Names[u]
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// OutEdges returns the outgoing edges of u. The slice aliases the graph's
// storage and must not be modified.
func (g *Graph) OutEdges(u uint32) []Edge {
	return g.Edges[g.FirstOut[u]:g.FirstOut[u+1]]
}

// InEdges returns the edges entering v; each Edge.To is the tail u of an
// edge u→v. The slice aliases the graph's storage and must not be modified.
func (g *Graph) InEdges(v uint32) []Edge {
	return g.BwdEdges[g.BwdFirstOut[v]:g.BwdFirstOut[v+1]]
}

// buildReverse fills BwdFirstOut and BwdEdges from the forward CSR. In-edges
// of each node are ordered by tail index.
func (g *Graph) buildReverse() {
	n := uint32(g.NumNodes())
	first := make([]uint32, n+1)
	for _, e := range g.Edges {
		first[e.To+1]++
	}
	for i := uint32(1); i <= n; i++ {
		first[i] += first[i-1]
	}

	bwd := make([]Edge, len(g.Edges))
	pos := make([]uint32, n)
	copy(pos, first[:n])
	for u := range n {
		start, end := g.EdgesFrom(u)
		for i := start; i < end; i++ {
			e := g.Edges[i]
			bwd[pos[e.To]] = Edge{To: u, Weight: e.Weight}
			pos[e.To]++
		}
	}
	g.BwdFirstOut = first
	g.BwdEdges = bwd
}

// FindEdge returns the smallest weight among the parallel edges u→v and
// whether any such edge exists.
func (g *Graph) FindEdge(u, v uint32) (float64, bool) {
	found := false
	var best float64
	for _, e := range g.OutEdges(u) {
		if e.To == v && (!found || e.Weight < best) {
			best = e.Weight
			found = true
		}
	}
	return best, found
}
