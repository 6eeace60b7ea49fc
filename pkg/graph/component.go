package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		rank:   make([]byte, n),
		size:   make([]uint32, n),
	}
	for i := range n {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// weakComponents unions every edge, treating the directed graph as undirected.
func weakComponents(g *Graph) *UnionFind {
	n := uint32(g.NumNodes())
	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		for _, e := range g.OutEdges(u) {
			uf.Union(u, e.To)
		}
	}
	return uf
}

// ComponentLabels assigns every node a weakly connected component label in
// 0..count-1. Labels follow the order of each component's lowest node index.
func ComponentLabels(g *Graph) (labels []uint32, count int) {
	n := uint32(g.NumNodes())
	uf := weakComponents(g)

	labels = make([]uint32, n)
	byRoot := make(map[uint32]uint32)
	for i := uint32(0); i < n; i++ {
		root := uf.Find(i)
		label, ok := byRoot[root]
		if !ok {
			label = uint32(len(byRoot))
			byRoot[root] = label
		}
		labels[i] = label
	}
	return labels, len(byRoot)
}

// LargestComponent returns the node indices belonging to the largest
// weakly connected component, in ascending order.
func LargestComponent(g *Graph) []uint32 {
	n := uint32(g.NumNodes())
	if n == 0 {
		return nil
	}

	uf := weakComponents(g)

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < n; i++ {
		if s := uf.Size(i); s > bestSize {
			bestRoot = uf.Find(i)
			bestSize = s
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < n; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent creates a new graph containing only the specified nodes,
// renumbered densely in the given order. Edges leaving the set are dropped.
func FilterToComponent(g *Graph, nodes []uint32) (*Graph, error) {
	if len(nodes) == 0 {
		return NewBuilder().Build()
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	b := NewBuilder()
	for newIdx, oldIdx := range nodes {
		b.SetNode(uint32(newIdx), g.NodeLat[oldIdx], g.NodeLon[oldIdx], g.Names[oldIdx])
	}
	for _, oldU := range nodes {
		for _, e := range g.OutEdges(oldU) {
			if newV, ok := oldToNew[e.To]; ok {
				b.AddEdge(oldToNew[oldU], newV, e.Weight)
			}
		}
	}
	return b.Build()
}
