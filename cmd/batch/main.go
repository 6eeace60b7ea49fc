package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"route_planner/pkg/batch"
	"route_planner/pkg/dataset"
	"route_planner/pkg/report"
	"route_planner/pkg/routing"
)

func main() {
	src := dataset.RegisterFlags(flag.CommandLine)
	queries := flag.Int("queries", 1000, "number of random (source, target) queries")
	seed := flag.Uint64("seed", 42, "random seed")
	workers := flag.Int("workers", 0, "concurrent queries (0 = serial, -1 = GOMAXPROCS; >1 skews timings)")
	connected := flag.Bool("connected", false, "draw targets from the source's connected component")
	heuristic := flag.String("heuristic", "euclidean", "A* heuristic: euclidean, haversine, haversine_m or zero")
	outDir := flag.String("out", "results", "directory for metrics_batch.csv")
	flag.Parse()

	h, err := routing.ParseHeuristic(*heuristic)
	if err != nil {
		log.Fatal(err)
	}
	g, err := src.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, err := batch.Run(ctx, g, batch.Config{
		Queries:       *queries,
		Seed:          *seed,
		Workers:       *workers,
		ConnectedOnly: *connected,
		Progress:      max(*queries/10, 1),
		Options:       []routing.Option{routing.WithHeuristic(h)},
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Ran %d queries in %s", len(res.Pairs), time.Since(start).Round(time.Millisecond))

	for _, s := range res.Summaries {
		log.Println(s.String())
	}
	if res.Mismatches > 0 {
		log.Printf("WARNING: %d runs disagreed with Dijkstra", res.Mismatches)
	}

	out := filepath.Join(*outDir, "metrics_batch.csv")
	if err := report.WriteMetricsFile(out, res.Rows()); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s", out)
	if res.Mismatches > 0 {
		os.Exit(2)
	}
}
