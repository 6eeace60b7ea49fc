package routing

import (
	"errors"
	"fmt"
	"strings"

	"route_planner/pkg/geo"
	"route_planner/pkg/graph"
)

// Heuristic estimates the remaining cost from one node to another.
//
// A* and bidirectional A* return exact shortest distances only when the
// heuristic is consistent: h(u) <= w(u,v) + h(v) for every edge and
// h(target) = 0. With an inconsistent heuristic they still return a valid
// path, but its length may exceed the optimum.
type Heuristic func(g *graph.Graph, from, to uint32) float64

// Euclidean is the planar distance between the raw (lat, lon) pairs. It is
// the default and matches graphs whose weights are at least the coordinate
// distance between endpoints.
func Euclidean(g *graph.Graph, from, to uint32) float64 {
	return geo.Euclidean(g.NodeLat[from], g.NodeLon[from], g.NodeLat[to], g.NodeLon[to])
}

// Haversine is the great-circle distance in kilometres, for graphs weighted
// in kilometres.
func Haversine(g *graph.Graph, from, to uint32) float64 {
	return geo.HaversineKm(g.NodeLat[from], g.NodeLon[from], g.NodeLat[to], g.NodeLon[to])
}

// HaversineMeters is the great-circle distance in metres, for graphs built
// from OSM data.
func HaversineMeters(g *graph.Graph, from, to uint32) float64 {
	return geo.Haversine(g.NodeLat[from], g.NodeLon[from], g.NodeLat[to], g.NodeLon[to])
}

// Zero turns A* into Dijkstra.
func Zero(*graph.Graph, uint32, uint32) float64 { return 0 }

// ErrUnknownHeuristic is returned by ParseHeuristic.
var ErrUnknownHeuristic = errors.New("unknown heuristic")

// ParseHeuristic maps a flag value to a Heuristic.
func ParseHeuristic(name string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean":
		return Euclidean, nil
	case "haversine", "haversine_km":
		return Haversine, nil
	case "haversine_m", "meters":
		return HaversineMeters, nil
	case "zero", "none":
		return Zero, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
}

type options struct {
	heuristic Heuristic
}

// Option configures a search.
type Option func(*options)

// WithHeuristic sets the heuristic used by AStar and BidirectionalAStar.
// Dijkstra ignores it. A nil h selects the default.
func WithHeuristic(h Heuristic) Option {
	return func(o *options) {
		if h != nil {
			o.heuristic = h
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{heuristic: Euclidean}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
