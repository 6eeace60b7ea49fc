package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route_planner/pkg/graph"
	"route_planner/pkg/routing"
)

func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	b.SetNode(0, 48.85, 2.35, "Paris")
	b.SetNode(1, 47.22, 2.10, "")
	b.SetNode(2, 45.76, 4.83, "Lyon")
	b.AddRoute(0, 1, 1)
	b.AddRoute(1, 2, 1)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestPathFeatureCollection(t *testing.T) {
	g := lineGraph(t)
	fc := PathFeatureCollection(g, []uint32{0, 1, 2})

	require.Len(t, fc.Features, 4)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{2.35, 48.85}, {2.10, 47.22}, {4.83, 45.76}}, line)
	assert.Equal(t, "#FF0000", fc.Features[0].Properties["stroke"])

	titles := []string{"start", "city", "target"}
	colors := []string{"#ff0000ff", "#FFA500", "#0000FF"}
	for i := range 3 {
		f := fc.Features[i+1]
		assert.Equal(t, titles[i], f.Properties["title"])
		assert.Equal(t, colors[i], f.Properties["marker-color"])
	}
	assert.Equal(t, "Paris", fc.Features[1].Properties["name"])
	_, hasName := fc.Features[2].Properties["name"]
	assert.False(t, hasName)
}

func TestWriteGeoJSON(t *testing.T) {
	g := lineGraph(t)
	path := filepath.Join(t.TempDir(), "results", "route.geojson")
	require.NoError(t, WriteGeoJSON(path, g, []uint32{2, 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "start", fc.Features[1].Properties["title"])
	assert.Equal(t, "target", fc.Features[2].Properties["title"])
}

func TestWriteGeoJSONEmptyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route.geojson")
	require.NoError(t, WriteGeoJSON(path, lineGraph(t), nil))

	var raw map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])
}

func TestRenderViewer(t *testing.T) {
	html, err := RenderViewer(Viewer{GeoJSONFile: "route.geojson", Summary: "dist=4 <b>"})
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, `fetch("route.geojson")`)
	assert.Contains(t, s, "Route Planner - Visualization")
	assert.Contains(t, s, "dist=4 &lt;b&gt;")
	assert.Contains(t, s, "leaflet.js")
}

func TestWriteViewerHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route_map.html")
	require.NoError(t, WriteViewerHTML(path, Viewer{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!doctype html>"))
}

func TestWriteMetricsCSV(t *testing.T) {
	rows := []Row{
		RowFromStats("DIJKSTRA", routing.Stats{Distance: 4, NodesExpanded: 4, Elapsed: 1234 * time.Microsecond, Path: []uint32{0, 1, 2, 3}}),
		RowFromStats("BIDIR_ASTAR", routing.Stats{Distance: math.Inf(1), NodesExpanded: 2}),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMetricsCSV(&buf, rows))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"label", "distance", "nodes_expanded", "millis", "path_len"},
		{"DIJKSTRA", "4", "4", "1.234", "4"},
		{"BIDIR_ASTAR", "inf", "2", "0.000", "0"},
	}, recs)
}

func TestPercentile(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, Percentile(vals, 50))
	assert.Equal(t, 1.0, Percentile(vals, 0))
	assert.Equal(t, 5.0, Percentile(vals, 100))
	assert.InDelta(t, 4.6, Percentile(vals, 90), 1e-12)
	assert.InDelta(t, 4.96, Percentile(vals, 99), 1e-12)
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 99))
}

func TestSummarize(t *testing.T) {
	runs := []routing.Stats{
		{Distance: 10, NodesExpanded: 4, Elapsed: 3 * time.Millisecond, Path: []uint32{0, 1, 2}},
		{Distance: 20, NodesExpanded: 8, Elapsed: 1 * time.Millisecond, Path: []uint32{0, 1}},
		{Distance: math.Inf(1), NodesExpanded: 6, Elapsed: 2 * time.Millisecond},
	}
	s := Summarize(routing.AlgAStar, runs)

	assert.Equal(t, 3, s.Runs)
	assert.Equal(t, 2, s.Reachable)
	assert.InDelta(t, 2.0, s.MeanMillis, 1e-12)
	assert.InDelta(t, 6.0, s.MeanNodes, 1e-12)
	assert.InDelta(t, 15.0, s.MeanDistance, 1e-12)
	assert.InDelta(t, 2.0, s.P50Millis, 1e-12)
	assert.InDelta(t, 2.8, s.P90Millis, 1e-12)

	row := s.Row()
	assert.Equal(t, "astar_avg", row.Label)
	assert.Equal(t, 6, row.NodesExpanded)
	assert.Equal(t, 2, row.PathLen)
	assert.Contains(t, s.String(), "ASTAR mean_time_ms=2.000")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(routing.AlgDijkstra, nil)
	assert.Zero(t, s.Runs)
	assert.True(t, math.IsInf(s.MeanDistance, 1))
}

func TestCompareFeatureCollection(t *testing.T) {
	g := lineGraph(t)
	runs := []routing.Stats{
		{Algorithm: routing.AlgDijkstra, Distance: 2, NodesExpanded: 3, Path: []uint32{0, 1, 2}},
		{Algorithm: routing.AlgBidirectionalAStar, Distance: math.Inf(1), NodesExpanded: 1},
	}
	fc := CompareFeatureCollection(g, runs)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, "dijkstra", fc.Features[0].Properties["algorithm"])
	assert.Equal(t, 2.0, fc.Features[0].Properties["distance"])
	assert.Len(t, fc.Features[0].Geometry.(orb.LineString), 3)
	assert.Nil(t, fc.Features[1].Properties["distance"])

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"distance":null`)
}
