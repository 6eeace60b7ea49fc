package routing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"route_planner/pkg/graph"
)

var inf = math.Inf(1)

var (
	// ErrNodeOutOfRange is returned when a source or target index is not a
	// node of the graph. A nil or empty graph has no valid indices.
	ErrNodeOutOfRange = errors.New("node index out of range")

	// ErrUnknownAlgorithm is returned by ParseAlgorithm and Search for an
	// unrecognised algorithm.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// Algorithm identifies one of the search strategies.
type Algorithm int

const (
	AlgDijkstra Algorithm = iota
	AlgAStar
	AlgBidirectionalAStar
)

var algorithmNames = [...]string{
	AlgDijkstra:           "dijkstra",
	AlgAStar:              "astar",
	AlgBidirectionalAStar: "bidir_astar",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// Label returns the short upper-case label used in reports ("DIJKSTRA",
// "ASTAR", "BIDIR_ASTAR").
func (a Algorithm) Label() string {
	return strings.ToUpper(a.String())
}

// Algorithms returns every algorithm in reporting order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgDijkstra, AlgAStar, AlgBidirectionalAStar}
}

// ParseAlgorithm maps a name such as "astar" or "bidir_astar" to an Algorithm.
// Matching is case-insensitive; "bidirectional" and "a*" are accepted aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra":
		return AlgDijkstra, nil
	case "astar", "a*", "a_star":
		return AlgAStar, nil
	case "bidir_astar", "bidirectional", "bidirectional_astar", "bidir":
		return AlgBidirectionalAStar, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Stats is the result of a single search.
type Stats struct {
	Algorithm     Algorithm
	Distance      float64 // +Inf when the target is unreachable
	NodesExpanded int     // nodes popped and processed; stale entries are not counted
	Elapsed       time.Duration
	Path          []uint32 // source..target inclusive; empty when unreachable
}

// Reachable reports whether a path was found.
func (s Stats) Reachable() bool {
	return !math.IsInf(s.Distance, 1) && len(s.Path) > 0
}

// Millis returns the elapsed time in fractional milliseconds.
func (s Stats) Millis() float64 {
	return float64(s.Elapsed) / float64(time.Millisecond)
}

// SearchFunc is the signature shared by Dijkstra, AStar and BidirectionalAStar.
type SearchFunc func(g *graph.Graph, source, target uint32, opts ...Option) (Stats, error)

// Func returns the search function for a.
func (a Algorithm) Func() (SearchFunc, error) {
	switch a {
	case AlgDijkstra:
		return Dijkstra, nil
	case AlgAStar:
		return AStar, nil
	case AlgBidirectionalAStar:
		return BidirectionalAStar, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownAlgorithm, a)
}

// Search runs algorithm alg from source to target.
func Search(alg Algorithm, g *graph.Graph, source, target uint32, opts ...Option) (Stats, error) {
	fn, err := alg.Func()
	if err != nil {
		return Stats{Algorithm: alg, Distance: inf}, err
	}
	return fn(g, source, target, opts...)
}

// checkEndpoints validates source and target against g. On failure it
// returns the Stats every search reports for invalid input.
func checkEndpoints(alg Algorithm, g *graph.Graph, source, target uint32) (Stats, error) {
	for _, u := range [2]uint32{source, target} {
		if !g.HasNode(u) {
			n := 0
			if g != nil {
				n = g.NumNodes()
			}
			return Stats{Algorithm: alg, Distance: inf},
				fmt.Errorf("%w: %d (graph has %d nodes)", ErrNodeOutOfRange, u, n)
		}
	}
	return Stats{}, nil
}

// trivial is the result for source == target: no search runs, so nothing is
// expanded.
func trivial(alg Algorithm, source uint32, start time.Time) Stats {
	return Stats{
		Algorithm: alg,
		Distance:  0,
		Path:      []uint32{source},
		Elapsed:   time.Since(start),
	}
}
