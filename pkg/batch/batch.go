// Package batch runs every search algorithm over many random queries and
// aggregates the results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"route_planner/pkg/graph"
	"route_planner/pkg/report"
	"route_planner/pkg/routing"
)

// ErrTooFewNodes is returned when the graph cannot supply a pair of
// distinct nodes.
var ErrTooFewNodes = errors.New("batch: need at least two nodes")

// Config controls a batch run.
type Config struct {
	Queries int
	Seed    uint64
	// Workers bounds concurrent queries. 0 and 1 run serially, so timings
	// are not skewed by searches competing for cores and memory bandwidth.
	// Negative uses GOMAXPROCS, which is faster but inflates percentiles.
	Workers int
	// ConnectedOnly draws the target from the source's weakly connected
	// component, so most queries have an answer.
	ConnectedOnly bool
	// Progress logs a line every Progress completed queries. 0 disables it.
	Progress int
	Options  []routing.Option
}

// Pair is one (source, target) query.
type Pair struct {
	Source, Target uint32
}

// Result holds every run plus per-algorithm summaries, both in
// routing.Algorithms() order.
type Result struct {
	Pairs      []Pair
	Runs       [][]routing.Stats // Runs[alg][query]
	Summaries  []report.Summary
	Mismatches int // runs whose distance disagreed with Dijkstra on the same query
}

// Rows returns the "<alg>_avg" metrics rows.
func (r *Result) Rows() []report.Row {
	rows := make([]report.Row, len(r.Summaries))
	for i, s := range r.Summaries {
		rows[i] = s.Row()
	}
	return rows
}

// Pairs draws n random (s, t) pairs with s != t from a seeded generator.
func Pairs(g *graph.Graph, n int, seed uint64, connectedOnly bool) ([]Pair, error) {
	numNodes := g.NumNodes()
	if numNodes < 2 {
		return nil, ErrTooFewNodes
	}
	rng := rand.New(rand.NewSource(seed))

	var labels []uint32
	var members [][]uint32
	if connectedOnly {
		var count int
		labels, count = graph.ComponentLabels(g)
		members = make([][]uint32, count)
		for u, l := range labels {
			members[l] = append(members[l], uint32(u))
		}
		hasPair := false
		for _, m := range members {
			if len(m) >= 2 {
				hasPair = true
				break
			}
		}
		if !hasPair {
			return nil, fmt.Errorf("%w in one component", ErrTooFewNodes)
		}
	}

	pairs := make([]Pair, 0, n)
	for len(pairs) < n {
		s := uint32(rng.Intn(numNodes))
		var t uint32
		if connectedOnly {
			m := members[labels[s]]
			if len(m) < 2 {
				continue
			}
			t = m[rng.Intn(len(m))]
		} else {
			t = uint32(rng.Intn(numNodes))
		}
		if s == t {
			continue
		}
		pairs = append(pairs, Pair{Source: s, Target: t})
	}
	return pairs, nil
}

// Run executes cfg.Queries random queries with every algorithm. Queries run
// concurrently over the shared read-only graph; each search stays
// single-threaded.
func Run(ctx context.Context, g *graph.Graph, cfg Config) (*Result, error) {
	pairs, err := Pairs(g, cfg.Queries, cfg.Seed, cfg.ConnectedOnly)
	if err != nil {
		return nil, err
	}

	algs := routing.Algorithms()
	res := &Result{
		Pairs: pairs,
		Runs:  make([][]routing.Stats, len(algs)),
	}
	for i := range res.Runs {
		res.Runs[i] = make([]routing.Stats, len(pairs))
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workerCount(cfg.Workers))
	for qi, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for ai, alg := range algs {
				st, err := routing.Search(alg, g, p.Source, p.Target, cfg.Options...)
				if err != nil {
					return fmt.Errorf("query %d (%d->%d) %v: %w", qi, p.Source, p.Target, alg, err)
				}
				res.Runs[ai][qi] = st
			}
			if cfg.Progress > 0 && (qi+1)%cfg.Progress == 0 {
				log.Printf("Completed %d/%d", qi+1, len(pairs))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for qi, p := range pairs {
		ref := res.Runs[0][qi].Distance
		for ai := 1; ai < len(algs); ai++ {
			got := res.Runs[ai][qi].Distance
			if !sameDistance(ref, got) {
				res.Mismatches++
				log.Printf("Query %d: %v distance %g != %v distance %g (src=%d %q, tgt=%d %q)",
					qi, algs[ai], got, algs[0], ref,
					p.Source, g.Name(p.Source), p.Target, g.Name(p.Target))
			}
		}
	}

	for ai, alg := range algs {
		res.Summaries = append(res.Summaries, report.Summarize(alg, res.Runs[ai]))
	}
	return res, nil
}

func sameDistance(a, b float64) bool {
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return math.IsInf(a, 1) && math.IsInf(b, 1)
	}
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(a))
}

func workerCount(n int) int {
	switch {
	case n < 0:
		return runtime.GOMAXPROCS(0)
	case n == 0:
		return 1
	}
	return n
}
