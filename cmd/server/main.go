package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"route_planner/pkg/api"
	"route_planner/pkg/dataset"
	"route_planner/pkg/routing"
)

func main() {
	src := dataset.RegisterFlags(flag.CommandLine)
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	heuristic := flag.String("heuristic", "euclidean", "A* heuristic: euclidean, haversine, haversine_m or zero")
	maxSnap := flag.Float64("max-snap", routing.DefaultMaxSnapMeters, "max distance in meters from a query point to its node (<0 = unlimited)")
	flag.Parse()

	h, err := routing.ParseHeuristic(*heuristic)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	g, err := src.Load()
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	log.Println("Building R-tree spatial index...")
	engine := routing.NewEngine(g, routing.EngineConfig{Heuristic: h, MaxSnapMeters: *maxSnap})
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin

	srv := api.NewServer(cfg, engine)
	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
