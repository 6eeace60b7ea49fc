// Package report renders search results: GeoJSON overlays, a static map
// viewer, tabular metrics and batch summaries.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"route_planner/pkg/graph"
	"route_planner/pkg/routing"
)

// Marker styling used by the viewer.
const (
	lineColor   = "#FF0000"
	lineWidth   = 4
	startColor  = "#ff0000ff"
	targetColor = "#0000FF"
	cityColor   = "#FFA500"
)

// PathFeatureCollection returns a LineString through the path followed by
// one Point per path node. Coordinates are [lon, lat].
func PathFeatureCollection(g *graph.Graph, path []uint32) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, len(path))
	for i, u := range path {
		line[i] = nodePoint(g, u)
	}
	lf := geojson.NewFeature(line)
	lf.Properties["stroke"] = lineColor
	lf.Properties["stroke-width"] = lineWidth
	fc.Append(lf)

	for i, u := range path {
		f := geojson.NewFeature(nodePoint(g, u))
		switch {
		case i == 0:
			f.Properties["title"] = "start"
			f.Properties["marker-color"] = startColor
		case i == len(path)-1:
			f.Properties["title"] = "target"
			f.Properties["marker-color"] = targetColor
		default:
			f.Properties["title"] = "city"
			f.Properties["marker-color"] = cityColor
		}
		if name := g.Name(u); name != "" {
			f.Properties["name"] = name
		}
		f.Properties["node"] = u
		fc.Append(f)
	}
	return fc
}

var algColors = map[routing.Algorithm]string{
	routing.AlgDijkstra:           "#E41A1C",
	routing.AlgAStar:              "#377EB8",
	routing.AlgBidirectionalAStar: "#4DAF4A",
}

// CompareFeatureCollection returns one LineString per run, styled by
// algorithm and carrying its statistics. An unreachable run has an empty
// line and a null distance.
func CompareFeatureCollection(g *graph.Graph, runs []routing.Stats) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, st := range runs {
		line := make(orb.LineString, len(st.Path))
		for i, u := range st.Path {
			line[i] = nodePoint(g, u)
		}
		f := geojson.NewFeature(line)
		f.Properties["algorithm"] = st.Algorithm.String()
		f.Properties["label"] = st.Algorithm.Label()
		f.Properties["nodes_expanded"] = st.NodesExpanded
		f.Properties["millis"] = st.Millis()
		f.Properties["path_len"] = len(st.Path)
		f.Properties["distance"] = nil
		if st.Reachable() {
			f.Properties["distance"] = st.Distance
		}
		f.Properties["stroke"] = algColors[st.Algorithm]
		f.Properties["stroke-width"] = lineWidth
		fc.Append(f)
	}
	return fc
}

func nodePoint(g *graph.Graph, u uint32) orb.Point {
	lat, lon := g.Coordinates(u)
	return orb.Point{lon, lat}
}

// WriteGeoJSON writes the path overlay to path.
func WriteGeoJSON(path string, g *graph.Graph, nodes []uint32) error {
	data, err := PathFeatureCollection(g, nodes).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// into place, creating the parent directory if needed.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
