package routing

import (
	"context"
	"errors"
	"fmt"

	"route_planner/pkg/graph"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteQuery is a coordinate-to-coordinate request.
type RouteQuery struct {
	Algorithm Algorithm
	Start     LatLng
	End       LatLng
}

// RouteResult is the output of a route query: the search statistics plus
// everything needed to draw the path.
type RouteResult struct {
	Stats
	Source   uint32
	Target   uint32
	Names    []string // display name per path node
	Geometry []LatLng // coordinate per path node
	SnapDist [2]float64
}

// GraphInfo summarises the loaded graph.
type GraphInfo struct {
	NumNodes int
	NumEdges int
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, q RouteQuery) (*RouteResult, error)
	Search(ctx context.Context, alg Algorithm, source, target uint32) (*RouteResult, error)
	Compare(ctx context.Context, source, target uint32) ([]*RouteResult, error)
	Info() GraphInfo
}

// EngineConfig tunes an Engine.
type EngineConfig struct {
	Heuristic     Heuristic // nil selects Euclidean
	MaxSnapMeters float64   // 0 selects DefaultMaxSnapMeters; negative disables the limit
}

// Engine implements Router over an in-memory graph. It is safe for
// concurrent use.
type Engine struct {
	g       *graph.Graph
	snapper *Snapper
	opts    []Option
}

// NewEngine creates a routing engine for g.
func NewEngine(g *graph.Graph, cfg EngineConfig) *Engine {
	maxSnap := cfg.MaxSnapMeters
	if maxSnap == 0 {
		maxSnap = DefaultMaxSnapMeters
	}
	return &Engine{
		g:       g,
		snapper: NewSnapper(g, maxSnap),
		opts:    []Option{WithHeuristic(cfg.Heuristic)},
	}
}

// Info returns node and edge counts.
func (e *Engine) Info() GraphInfo {
	return GraphInfo{NumNodes: e.g.NumNodes(), NumEdges: e.g.NumEdges()}
}

// Route snaps both coordinates to their nearest nodes and searches between them.
func (e *Engine) Route(ctx context.Context, q RouteQuery) (*RouteResult, error) {
	start, err := e.snapper.Snap(q.Start.Lat, q.Start.Lng)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := e.snapper.Snap(q.End.Lat, q.End.Lng)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	res, err := e.Search(ctx, q.Algorithm, start.Node, end.Node)
	if err != nil {
		return nil, err
	}
	res.SnapDist = [2]float64{start.Dist, end.Dist}
	return res, nil
}

// Search runs alg between two node indices. An unreachable target yields
// ErrNoRoute.
func (e *Engine) Search(ctx context.Context, alg Algorithm, source, target uint32) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := Search(alg, e.g, source, target, e.opts...)
	if err != nil {
		return nil, err
	}
	if !st.Reachable() {
		return nil, ErrNoRoute
	}
	return e.result(st, source, target), nil
}

// Compare runs every algorithm between two node indices. Results are in
// Algorithms() order; an unreachable target is not an error here, so the
// caller still sees the expansion counts.
func (e *Engine) Compare(ctx context.Context, source, target uint32) ([]*RouteResult, error) {
	out := make([]*RouteResult, 0, len(Algorithms()))
	for _, alg := range Algorithms() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := Search(alg, e.g, source, target, e.opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, e.result(st, source, target))
	}
	return out, nil
}

func (e *Engine) result(st Stats, source, target uint32) *RouteResult {
	res := &RouteResult{
		Stats:    st,
		Source:   source,
		Target:   target,
		Names:    make([]string, len(st.Path)),
		Geometry: make([]LatLng, len(st.Path)),
	}
	for i, u := range st.Path {
		lat, lon := e.g.Coordinates(u)
		res.Geometry[i] = LatLng{Lat: lat, Lng: lon}
		res.Names[i] = e.g.Name(u)
	}
	return res
}
