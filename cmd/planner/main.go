package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"route_planner/pkg/dataset"
	"route_planner/pkg/graph"
	"route_planner/pkg/report"
	"route_planner/pkg/routing"
)

func main() {
	src := dataset.RegisterFlags(flag.CommandLine)
	source := flag.Uint("source", 0, "source node index")
	target := flag.Int("target", -1, "target node index (-1 = last node)")
	heuristic := flag.String("heuristic", "euclidean", "A* heuristic: euclidean, haversine, haversine_m or zero")
	printAdj := flag.Bool("print-adj", false, "print the adjacency list before searching")
	outDir := flag.String("out", "results", "directory for route.geojson, route_map.html and metrics.csv")
	flag.Parse()

	h, err := routing.ParseHeuristic(*heuristic)
	if err != nil {
		log.Fatal(err)
	}
	g, err := src.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *printAdj {
		printAdjacency(g)
	}

	s, t, err := endpoints(*source, *target, g.NumNodes())
	if err != nil {
		log.Fatal(err)
	}

	var rows []report.Row
	results := make(map[routing.Algorithm]routing.Stats)
	for _, alg := range routing.Algorithms() {
		st, err := routing.Search(alg, g, s, t, routing.WithHeuristic(h))
		if err != nil {
			log.Fatalf("%v: %v", alg, err)
		}
		results[alg] = st
		rows = append(rows, report.RowFromStats(alg.Label(), st))

		fmt.Printf("%s: dist=%s nodes=%d ms=%.3f path_len=%d\n",
			alg.Label(), formatDist(st.Distance), st.NodesExpanded, st.Millis(), len(st.Path))
		if st.Reachable() {
			fmt.Printf("  path: %s\n", namedPath(g, st.Path))
		} else {
			fmt.Println("  no path")
		}
	}

	path := results[routing.AlgBidirectionalAStar].Path
	if len(path) == 0 {
		path = results[routing.AlgAStar].Path
	}
	if err := writeOutputs(*outDir, g, path, rows); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote route.geojson, route_map.html and metrics.csv to %s", *outDir)
}

// endpoints converts the -source and -target flags to node ids. A negative
// target selects the last node. Ids beyond the graph are left to Search.
func endpoints(source uint, target, numNodes int) (uint32, uint32, error) {
	if source > math.MaxUint32 {
		return 0, 0, fmt.Errorf("source %d exceeds max node id %d", source, uint32(math.MaxUint32))
	}
	if target < 0 {
		if numNodes == 0 {
			return 0, 0, errors.New("graph has no nodes")
		}
		target = numNodes - 1
	}
	if uint64(target) > math.MaxUint32 {
		return 0, 0, fmt.Errorf("target %d exceeds max node id %d", target, uint32(math.MaxUint32))
	}
	return uint32(source), uint32(target), nil
}

func writeOutputs(dir string, g *graph.Graph, path []uint32, rows []report.Row) error {
	if err := report.WriteGeoJSON(filepath.Join(dir, "route.geojson"), g, path); err != nil {
		return err
	}
	summary := fmt.Sprintf("%d nodes on path", len(path))
	if len(path) == 0 {
		summary = "no path"
	}
	if err := report.WriteViewerHTML(filepath.Join(dir, "route_map.html"), report.Viewer{
		GeoJSONFile: "route.geojson",
		Summary:     summary,
	}); err != nil {
		return err
	}
	return report.WriteMetricsFile(filepath.Join(dir, "metrics.csv"), rows)
}

func printAdjacency(g *graph.Graph) {
	w := os.Stdout
	for u := range uint32(g.NumNodes()) {
		var b strings.Builder
		for i, e := range g.OutEdges(u) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d(%g)", e.To, e.Weight)
		}
		fmt.Fprintf(w, "%d %s: %s\n", u, label(g, u), b.String())
	}
}

func namedPath(g *graph.Graph, path []uint32) string {
	parts := make([]string, len(path))
	for i, u := range path {
		parts[i] = label(g, u)
	}
	return strings.Join(parts, " -> ")
}

func label(g *graph.Graph, u uint32) string {
	if name := g.Name(u); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", u)
}

func formatDist(d float64) string {
	if math.IsInf(d, 1) {
		return "inf"
	}
	return fmt.Sprintf("%g", d)
}
