package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"route_planner/pkg/geo"
	"route_planner/pkg/graph"
)

// DefaultMaxSnapMeters is the snapping radius used by NewEngine when none is
// configured.
const DefaultMaxSnapMeters = 5000.0

// snapCandidates is how many planar-nearest nodes are re-ranked by ground
// distance. Planar distance in degrees shrinks longitude separation by
// cos(lat), so the nearest box is not always the nearest node.
const snapCandidates = 8

// snapSlack is the relative margin over the best equirectangular estimate
// within which candidates are re-checked with Haversine.
const snapSlack = 0.01

// ErrPointTooFar is returned when the query point is too far from any node.
var ErrPointTooFar = errors.New("point too far from graph")

// SnapResult represents a point snapped to a graph node.
type SnapResult struct {
	Node uint32
	Dist float64 // metres from the query point to the node
}

// Snapper finds the node nearest to a coordinate using an R-tree over node
// positions stored as (lon, lat) points.
type Snapper struct {
	tree    rtree.RTreeG[uint32]
	g       *graph.Graph
	maxDist float64
}

// NewSnapper indexes every node of g. maxDistMeters <= 0 disables the limit.
func NewSnapper(g *graph.Graph, maxDistMeters float64) *Snapper {
	s := &Snapper{g: g, maxDist: maxDistMeters}
	for u := 0; u < g.NumNodes(); u++ {
		p := [2]float64{g.NodeLon[u], g.NodeLat[u]}
		s.tree.Insert(p, p, uint32(u))
	}
	return s
}

// Len returns the number of indexed nodes.
func (s *Snapper) Len() int {
	return s.tree.Len()
}

// Snap returns the node nearest to (lat, lng). Candidates are ranked with
// the equirectangular approximation and only those close to the best
// estimate pay for a Haversine distance.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	type candidate struct {
		node     uint32
		lat, lng float64
		approx   float64
	}
	var cands [snapCandidates]candidate
	n := 0
	minApprox := math.Inf(1)

	q := [2]float64{lng, lat}
	s.tree.Nearby(
		func(min, max [2]float64, _ uint32, _ bool) float64 {
			return boxDistSq(q, min, max)
		},
		func(min, _ [2]float64, node uint32, _ float64) bool {
			d := geo.EquirectangularDist(lat, lng, min[1], min[0])
			cands[n] = candidate{node: node, lat: min[1], lng: min[0], approx: d}
			n++
			minApprox = math.Min(minApprox, d)
			return n < snapCandidates
		},
	)
	if n == 0 {
		return SnapResult{}, ErrPointTooFar
	}

	best := SnapResult{Node: noNode, Dist: math.Inf(1)}
	for _, c := range cands[:n] {
		if c.approx > minApprox*(1+snapSlack) {
			continue
		}
		if d := geo.Haversine(lat, lng, c.lat, c.lng); d < best.Dist || (d == best.Dist && c.node < best.Node) {
			best = SnapResult{Node: c.node, Dist: d}
		}
	}
	if s.maxDist > 0 && best.Dist > s.maxDist {
		return best, ErrPointTooFar
	}
	return best, nil
}

// boxDistSq is the squared planar distance from p to the box [min, max].
func boxDistSq(p, min, max [2]float64) float64 {
	var d float64
	for i := range 2 {
		switch {
		case p[i] < min[i]:
			d += (min[i] - p[i]) * (min[i] - p[i])
		case p[i] > max[i]:
			d += (p[i] - max[i]) * (p[i] - max[i])
		}
	}
	return d
}
