// Package dataset selects and loads the graph a binary works on: either a
// binary snapshot or a cities/routes CSV pair.
package dataset

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"route_planner/pkg/csvgraph"
	"route_planner/pkg/graph"
)

// ErrNoSource is returned by Load when neither a snapshot nor CSV files are set.
var ErrNoSource = errors.New("dataset: no graph source given")

// Source names where to load a graph from. GraphPath wins when set.
type Source struct {
	GraphPath  string
	CitiesPath string
	RoutesPath string
	Directed   bool
}

// RegisterFlags binds -graph, -cities, -routes and -directed on fs.
func RegisterFlags(fs *flag.FlagSet) *Source {
	s := &Source{}
	fs.StringVar(&s.GraphPath, "graph", "", "path to binary graph file (overrides -cities/-routes)")
	fs.StringVar(&s.CitiesPath, "cities", "data/cities.csv", "path to cities CSV (id,lat,lon,name)")
	fs.StringVar(&s.RoutesPath, "routes", "data/routes.csv", "path to routes CSV (u,v,w)")
	fs.BoolVar(&s.Directed, "directed", false, "treat each route row as a one-way edge")
	return s
}

// Load reads the graph described by s.
func (s *Source) Load() (*graph.Graph, error) {
	start := time.Now()

	switch {
	case s.GraphPath != "":
		log.Printf("Loading graph from %s...", s.GraphPath)
		g, err := graph.ReadBinary(s.GraphPath)
		if err != nil {
			return nil, fmt.Errorf("load graph: %w", err)
		}
		log.Printf("Loaded in %v: %d nodes, %d edges", time.Since(start), g.NumNodes(), g.NumEdges())
		return g, nil

	case s.CitiesPath != "" && s.RoutesPath != "":
		log.Printf("Loading %s and %s...", s.CitiesPath, s.RoutesPath)
		g, stats, err := csvgraph.LoadFiles(s.CitiesPath, s.RoutesPath, csvgraph.Options{Directed: s.Directed})
		if err != nil {
			return nil, fmt.Errorf("load csv: %w", err)
		}
		if stats.SkippedCities > 0 || stats.SkippedRoutes > 0 {
			log.Printf("Skipped %d city rows and %d route rows", stats.SkippedCities, stats.SkippedRoutes)
		}
		log.Printf("Loaded in %v: %d nodes, %d edges", time.Since(start), g.NumNodes(), g.NumEdges())
		return g, nil
	}
	return nil, ErrNoSource
}
