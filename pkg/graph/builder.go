package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/osm"

	osmparser "route_planner/pkg/osm"
)

// ErrNegativeWeight is returned by Build when an edge weight is negative or NaN.
var ErrNegativeWeight = errors.New("graph: negative or NaN edge weight")

type rawEdge struct {
	from   uint32
	to     uint32
	weight float64
}

// Builder accumulates nodes and edges and produces an immutable Graph.
// Node indices are dense: setting node 7 on an empty builder creates
// nodes 0..6 with zero coordinates and empty names.
type Builder struct {
	nodeLat []float64
	nodeLon []float64
	names   []string
	edges   []rawEdge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NumNodes returns the number of nodes allocated so far.
func (b *Builder) NumNodes() int {
	return len(b.nodeLat)
}

func (b *Builder) ensureNode(id uint32) {
	n := int(id) + 1
	for len(b.nodeLat) < n {
		b.nodeLat = append(b.nodeLat, 0)
		b.nodeLon = append(b.nodeLon, 0)
		b.names = append(b.names, "")
	}
}

// SetNode sets the coordinates and name of node id, growing the node set as needed.
func (b *Builder) SetNode(id uint32, lat, lon float64, name string) {
	b.ensureNode(id)
	b.nodeLat[id] = lat
	b.nodeLon[id] = lon
	b.names[id] = name
}

// AddEdge adds a directed edge from→to.
func (b *Builder) AddEdge(from, to uint32, weight float64) {
	b.ensureNode(max(from, to))
	b.edges = append(b.edges, rawEdge{from: from, to: to, weight: weight})
}

// AddRoute adds an undirected route as two directed edges.
func (b *Builder) AddRoute(a, c uint32, weight float64) {
	b.AddEdge(a, c, weight)
	b.AddEdge(c, a, weight)
}

// Build creates a CSR Graph with its reverse adjacency. Out-edges of each
// node keep the order in which they were added.
func (b *Builder) Build() (*Graph, error) {
	for _, e := range b.edges {
		if e.weight < 0 || math.IsNaN(e.weight) {
			return nil, fmt.Errorf("%w: %d->%d weight %v", ErrNegativeWeight, e.from, e.to, e.weight)
		}
	}

	numNodes := uint32(len(b.nodeLat))
	numEdges := uint32(len(b.edges))

	// Count edges per node, then prefix sum.
	firstOut := make([]uint32, numNodes+1)
	for _, e := range b.edges {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Stable placement keeps insertion order within each node's range.
	edges := make([]Edge, numEdges)
	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, e := range b.edges {
		edges[pos[e.from]] = Edge{To: e.to, Weight: e.weight}
		pos[e.from]++
	}

	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	names := make([]string, numNodes)
	copy(nodeLat, b.nodeLat)
	copy(nodeLon, b.nodeLon)
	copy(names, b.names)

	g := &Graph{
		FirstOut: firstOut,
		Edges:    edges,
		NodeLat:  nodeLat,
		NodeLon:  nodeLon,
		Names:    names,
	}
	g.buildReverse()
	return g, nil
}

// FromOSM creates a Graph from parsed OSM edges. OSM node IDs are remapped
// to dense indices in order of first appearance.
func FromOSM(result *osmparser.ParseResult) (*Graph, error) {
	b := NewBuilder()
	nodeSet := make(map[osm.NodeID]uint32)

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeSet))
		nodeSet[id] = idx
		b.SetNode(idx, result.NodeLat[id], result.NodeLon[id], result.NodeName[id])
		return idx
	}

	for _, e := range result.Edges {
		from := addNode(e.FromNodeID)
		to := addNode(e.ToNodeID)
		b.AddEdge(from, to, e.Weight)
	}

	return b.Build()
}
