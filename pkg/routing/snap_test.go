package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_planner/pkg/geo"
	"route_planner/pkg/graph"
)

// snapGraph is a small grid around Singapore, roughly 110 m between
// neighbouring nodes.
func snapGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	id := uint32(0)
	for i := range 3 {
		for j := range 3 {
			b.SetNode(id, 1.300+float64(i)*0.001, 103.800+float64(j)*0.001, "")
			id++
		}
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestSnapNearest(t *testing.T) {
	g := snapGraph(t)
	s := NewSnapper(g, 500)
	require.Equal(t, 9, s.Len())

	tests := []struct {
		name     string
		lat, lng float64
		want     uint32
	}{
		{"exact node", 1.300, 103.800, 0},
		{"near centre", 1.3011, 103.8009, 4},
		{"near corner", 1.3024, 103.8021, 8},
		{"outside grid", 1.2995, 103.8025, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Snap(tt.lat, tt.lng)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Node)
			assert.Less(t, res.Dist, 500.0)
		})
	}
}

// At 60°N a degree of longitude is half a degree of latitude on the ground,
// so the planar-nearest node is not the closest one.
func TestSnapHighLatitude(t *testing.T) {
	b := graph.NewBuilder()
	b.SetNode(0, 60.0012, 10.000, "north") // ~133 m, planar nearest
	b.SetNode(1, 60.000, 10.0018, "east")  // ~100 m
	g, err := b.Build()
	require.NoError(t, err)

	res, err := NewSnapper(g, 500).Snap(60, 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.Node)
	assert.InDelta(t, geo.Haversine(60, 10, 60, 10.0018), res.Dist, 1e-9)
}

func TestSnapTooFar(t *testing.T) {
	g := snapGraph(t)

	_, err := NewSnapper(g, 500).Snap(1.35, 103.85)
	assert.ErrorIs(t, err, ErrPointTooFar)

	// No limit.
	res, err := NewSnapper(g, -1).Snap(1.35, 103.85)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), res.Node)
}

func TestSnapEmptyGraph(t *testing.T) {
	g, err := graph.NewBuilder().Build()
	require.NoError(t, err)

	_, err = NewSnapper(g, 0).Snap(0, 0)
	assert.ErrorIs(t, err, ErrPointTooFar)
}
