package routing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"route_planner/pkg/graph"
)

// scenarioGraph builds
//
//	0 --1-- 1 --2-- 2 --1-- 3        4 (isolated)
//	 \_______4______/
//
// with nodes 0..3 on the equator at lon 0, 1, 3, 4 and node 4 at (10, 10).
// Every weight is at least the coordinate distance, so Euclidean is consistent.
func scenarioGraph(t testing.TB) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	b.SetNode(0, 0, 0, "A")
	b.SetNode(1, 0, 1, "B")
	b.SetNode(2, 0, 3, "C")
	b.SetNode(3, 0, 4, "D")
	b.SetNode(4, 10, 10, "E")
	b.AddRoute(0, 1, 1)
	b.AddRoute(1, 2, 2)
	b.AddRoute(0, 2, 4)
	b.AddRoute(2, 3, 1)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// randomGraph places n nodes in a 10x10 square and joins each pair with
// probability p. Weights are the Euclidean length stretched by up to 2x, so
// the Euclidean heuristic stays consistent.
func randomGraph(t testing.TB, rng *rand.Rand, n int, p float64) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for i := range n {
		b.SetNode(uint32(i), rng.Float64()*10, rng.Float64()*10, fmt.Sprintf("n%d", i))
	}
	g0, err := b.Build()
	require.NoError(t, err)
	for u := range n {
		for v := u + 1; v < n; v++ {
			if rng.Float64() >= p {
				continue
			}
			w := Euclidean(g0, uint32(u), uint32(v)) * (1 + rng.Float64())
			b.AddRoute(uint32(u), uint32(v), w)
		}
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// floydWarshall returns all-pairs shortest distances.
func floydWarshall(g *graph.Graph) [][]float64 {
	n := g.NumNodes()
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = math.Inf(1)
		}
		d[i][i] = 0
		for _, e := range g.OutEdges(uint32(i)) {
			d[i][e.To] = math.Min(d[i][e.To], e.Weight)
		}
	}
	for k := range n {
		for i := range n {
			for j := range n {
				if alt := d[i][k] + d[k][j]; alt < d[i][j] {
					d[i][j] = alt
				}
			}
		}
	}
	return d
}

// assertValidPath checks that st.Path runs source..target over real edges
// and that its weight equals st.Distance.
func assertValidPath(t *testing.T, g *graph.Graph, st Stats, source, target uint32) {
	t.Helper()
	require.NotEmpty(t, st.Path)
	assert.Equal(t, source, st.Path[0])
	assert.Equal(t, target, st.Path[len(st.Path)-1])

	var sum float64
	for i := 1; i < len(st.Path); i++ {
		w, ok := g.FindEdge(st.Path[i-1], st.Path[i])
		require.Truef(t, ok, "no edge %d->%d", st.Path[i-1], st.Path[i])
		sum += w
	}
	assert.InDelta(t, st.Distance, sum, 1e-9)
}

var searches = []struct {
	alg Algorithm
	fn  SearchFunc
}{
	{AlgDijkstra, Dijkstra},
	{AlgAStar, AStar},
	{AlgBidirectionalAStar, BidirectionalAStar},
}

func TestScenario(t *testing.T) {
	g := scenarioGraph(t)

	tests := []struct {
		name     string
		s, t     uint32
		distance float64
		path     []uint32
	}{
		{"shortest avoids direct edge", 0, 3, 4, []uint32{0, 1, 2, 3}},
		{"reverse direction", 3, 0, 4, []uint32{3, 2, 1, 0}},
		{"adjacent", 1, 2, 2, []uint32{1, 2}},
		{"source equals target", 0, 0, 0, []uint32{0}},
		{"disconnected", 0, 4, math.Inf(1), nil},
	}

	for _, s := range searches {
		for _, tt := range tests {
			t.Run(s.alg.String()+"/"+tt.name, func(t *testing.T) {
				st, err := s.fn(g, tt.s, tt.t)
				require.NoError(t, err)
				assert.Equal(t, s.alg, st.Algorithm)
				assert.Equal(t, tt.distance, st.Distance)
				assert.Equal(t, tt.path, st.Path)
				assert.Equal(t, tt.path != nil, st.Reachable())
				assert.GreaterOrEqual(t, st.Elapsed.Nanoseconds(), int64(0))
			})
		}
	}
}

func TestSourceEqualsTargetExpansions(t *testing.T) {
	g := scenarioGraph(t)

	for _, alg := range Algorithms() {
		st, err := Search(alg, g, 2, 2)
		require.NoError(t, err)
		assert.Zero(t, st.NodesExpanded, alg.String())
		assert.Equal(t, []uint32{2}, st.Path, alg.String())
		assert.Zero(t, st.Distance, alg.String())
		assert.True(t, st.Reachable(), alg.String())
	}
}

func TestOutOfRange(t *testing.T) {
	g := scenarioGraph(t)
	empty, err := graph.NewBuilder().Build()
	require.NoError(t, err)

	cases := []struct {
		name string
		g    *graph.Graph
		s, t uint32
	}{
		{"bad target", g, 0, 99},
		{"bad source", g, 5, 0},
		{"empty graph", empty, 0, 0},
		{"nil graph", nil, 0, 0},
	}

	for _, s := range searches {
		for _, c := range cases {
			t.Run(s.alg.String()+"/"+c.name, func(t *testing.T) {
				st, err := s.fn(c.g, c.s, c.t)
				require.ErrorIs(t, err, ErrNodeOutOfRange)
				assert.True(t, math.IsInf(st.Distance, 1))
				assert.Empty(t, st.Path)
				assert.Zero(t, st.NodesExpanded)
				assert.False(t, st.Reachable())
			})
		}
	}
}

func TestAgainstFloydWarshall(t *testing.T) {
	heuristics := map[string]Heuristic{"euclidean": Euclidean, "zero": Zero}

	for seed := uint64(1); seed <= 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := randomGraph(t, rng, 12, 0.25)
		want := floydWarshall(g)

		for hname, h := range heuristics {
			for _, s := range searches {
				for src := range uint32(g.NumNodes()) {
					for dst := range uint32(g.NumNodes()) {
						st, err := s.fn(g, src, dst, WithHeuristic(h))
						require.NoError(t, err)

						msg := fmt.Sprintf("seed=%d h=%s alg=%v %d->%d", seed, hname, s.alg, src, dst)
						if math.IsInf(want[src][dst], 1) {
							assert.True(t, math.IsInf(st.Distance, 1), msg)
							assert.Empty(t, st.Path, msg)
							continue
						}
						require.InDelta(t, want[src][dst], st.Distance, 1e-9, msg)
						assertValidPath(t, g, st, src, dst)
					}
				}
			}
		}
	}
}

func TestAlgorithmsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := randomGraph(t, rng, 60, 0.08)

	for range 200 {
		src := uint32(rng.Intn(g.NumNodes()))
		dst := uint32(rng.Intn(g.NumNodes()))

		ref, err := Dijkstra(g, src, dst)
		require.NoError(t, err)
		for _, fn := range []SearchFunc{AStar, BidirectionalAStar} {
			st, err := fn(g, src, dst)
			require.NoError(t, err)
			if math.IsInf(ref.Distance, 1) {
				assert.True(t, math.IsInf(st.Distance, 1))
				continue
			}
			assert.InDelta(t, ref.Distance, st.Distance, 1e-9)
			assertValidPath(t, g, st, src, dst)
		}
	}
}

func TestDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := randomGraph(t, rng, 40, 0.1)

	for _, s := range searches {
		first, err := s.fn(g, 0, 39)
		require.NoError(t, err)
		for range 5 {
			again, err := s.fn(g, 0, 39)
			require.NoError(t, err)
			assert.Equal(t, first.Distance, again.Distance)
			assert.Equal(t, first.Path, again.Path)
			assert.Equal(t, first.NodesExpanded, again.NodesExpanded)
		}
	}
}

// corridorGraph is a line 0..10 along the equator with a decoy branch of
// nodes 11..20 running the other way from node 0.
func corridorGraph(t testing.TB) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for i := 0; i <= 10; i++ {
		b.SetNode(uint32(i), 0, float64(i), "")
	}
	for j := 1; j <= 10; j++ {
		b.SetNode(uint32(10+j), 0, -float64(j), "")
	}
	for i := 0; i < 10; i++ {
		b.AddRoute(uint32(i), uint32(i+1), 1)
	}
	b.AddRoute(0, 11, 1)
	for j := 11; j < 20; j++ {
		b.AddRoute(uint32(j), uint32(j+1), 1)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestHeuristicPrunesExpansions(t *testing.T) {
	g := corridorGraph(t)

	dij, err := Dijkstra(g, 0, 10)
	require.NoError(t, err)
	astar, err := AStar(g, 0, 10)
	require.NoError(t, err)
	bidir, err := BidirectionalAStar(g, 0, 10)
	require.NoError(t, err)

	for _, st := range []Stats{dij, astar, bidir} {
		assert.Equal(t, 10.0, st.Distance)
		assert.Len(t, st.Path, 11)
	}
	assert.Equal(t, 20, dij.NodesExpanded)
	assert.Equal(t, 11, astar.NodesExpanded)
	assert.Less(t, bidir.NodesExpanded, dij.NodesExpanded)
}

func TestInconsistentHeuristicStillReturnsPath(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := randomGraph(t, rng, 30, 0.15)
	want := floydWarshall(g)
	greedy := func(g *graph.Graph, from, to uint32) float64 { return 100 * Euclidean(g, from, to) }

	for dst := uint32(1); dst < 30; dst++ {
		st, err := AStar(g, 0, dst, WithHeuristic(greedy))
		require.NoError(t, err)
		if math.IsInf(want[0][dst], 1) {
			assert.Empty(t, st.Path)
			continue
		}
		assertValidPath(t, g, st, 0, dst)
		assert.GreaterOrEqual(t, st.Distance, want[0][dst]-1e-9)
	}
}

func TestDirectedGraphSearches(t *testing.T) {
	// 0 -> 1 -> 2 only; nothing leads back.
	b := graph.NewBuilder()
	b.SetNode(0, 0, 0, "")
	b.SetNode(1, 0, 1, "")
	b.SetNode(2, 0, 2, "")
	b.AddEdge(0, 1, 1)
	b.AddEdge(1, 2, 1)
	g, err := b.Build()
	require.NoError(t, err)

	for _, s := range searches {
		st, err := s.fn(g, 0, 2)
		require.NoError(t, err, s.alg.String())
		assert.Equal(t, 2.0, st.Distance, s.alg.String())
		assert.Equal(t, []uint32{0, 1, 2}, st.Path, s.alg.String())

		st, err = s.fn(g, 2, 0)
		require.NoError(t, err, s.alg.String())
		assert.True(t, math.IsInf(st.Distance, 1), s.alg.String())
		assert.Nil(t, st.Path, s.alg.String())
	}
}

func TestOneWayCycle(t *testing.T) {
	// 0 -> 1 -> 2 -> 0, unit weights. Reaching 2 from 0 takes the long way.
	b := graph.NewBuilder()
	b.SetNode(0, 0, 0, "")
	b.SetNode(1, 0, 1, "")
	b.SetNode(2, 0, 0.5, "")
	b.AddEdge(0, 1, 1)
	b.AddEdge(1, 2, 1)
	b.AddEdge(2, 0, 1)
	g, err := b.Build()
	require.NoError(t, err)

	for _, s := range searches {
		for hname, h := range map[string]Heuristic{"zero": Zero, "euclidean": Euclidean} {
			st, err := s.fn(g, 0, 2, WithHeuristic(h))
			require.NoError(t, err)
			msg := s.alg.String() + "/" + hname
			assert.Equal(t, 2.0, st.Distance, msg)
			assert.Equal(t, []uint32{0, 1, 2}, st.Path, msg)
			assertValidPath(t, g, st, 0, 2)
		}
	}
}

// randomDirectedGraph is randomGraph with independent one-way edges, so
// u->v and v->u may differ in presence and weight.
func randomDirectedGraph(t testing.TB, rng *rand.Rand, n int, p float64) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for i := range n {
		b.SetNode(uint32(i), rng.Float64()*10, rng.Float64()*10, "")
	}
	g0, err := b.Build()
	require.NoError(t, err)
	for u := range n {
		for v := range n {
			if u == v || rng.Float64() >= p {
				continue
			}
			w := Euclidean(g0, uint32(u), uint32(v)) * (1 + rng.Float64())
			b.AddEdge(uint32(u), uint32(v), w)
		}
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestDirectedAgainstFloydWarshall(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := randomDirectedGraph(t, rng, 12, 0.2)
		want := floydWarshall(g)

		for _, h := range []Heuristic{Euclidean, Zero} {
			for _, s := range searches {
				for src := range uint32(g.NumNodes()) {
					for dst := range uint32(g.NumNodes()) {
						st, err := s.fn(g, src, dst, WithHeuristic(h))
						require.NoError(t, err)

						msg := fmt.Sprintf("seed=%d alg=%v %d->%d", seed, s.alg, src, dst)
						if math.IsInf(want[src][dst], 1) {
							assert.True(t, math.IsInf(st.Distance, 1), msg)
							assert.Empty(t, st.Path, msg)
							continue
						}
						require.InDelta(t, want[src][dst], st.Distance, 1e-9, msg)
						assertValidPath(t, g, st, src, dst)
					}
				}
			}
		}
	}
}

func TestDijkstraSkipsStaleEntries(t *testing.T) {
	// From 0, node 2 is first pushed at 4 (direct edge), then improved to 3
	// via node 1. The (4, 2) entry is popped before (4, 3) and discarded.
	g := scenarioGraph(t)

	st, err := Dijkstra(g, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 4.0, st.Distance)
	assert.Equal(t, 4, st.NodesExpanded)
}

func BenchmarkSearch(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	g := randomGraph(b, rng, 2000, 0.004)
	pairs := make([][2]uint32, 256)
	for i := range pairs {
		pairs[i] = [2]uint32{uint32(rng.Intn(g.NumNodes())), uint32(rng.Intn(g.NumNodes()))}
	}

	for _, s := range searches {
		b.Run(s.alg.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p := pairs[i%len(pairs)]
				if _, err := s.fn(g, p[0], p[1]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
