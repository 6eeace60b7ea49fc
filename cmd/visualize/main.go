package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"route_planner/pkg/api"
	"route_planner/pkg/dataset"
	"route_planner/pkg/graph"
	"route_planner/pkg/report"
	"route_planner/pkg/routing"
)

//go:embed static
var staticFiles embed.FS

type viewer struct {
	g    *graph.Graph
	opts []routing.Option
}

func main() {
	src := dataset.RegisterFlags(flag.CommandLine)
	port := flag.Int("port", 3000, "HTTP port to serve on")
	heuristic := flag.String("heuristic", "euclidean", "A* heuristic: euclidean, haversine, haversine_m or zero")
	flag.Parse()

	h, err := routing.ParseHeuristic(*heuristic)
	if err != nil {
		log.Fatal(err)
	}
	g, err := src.Load()
	if err != nil {
		log.Fatal(err)
	}

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}

	v := &viewer{g: g, opts: []routing.Option{routing.WithHeuristic(h)}}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/api/compare", v.handleCompare)
	r.Handle("/*", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Visualize server starting on http://localhost:%d", *port)
	log.Fatal(http.ListenAndServe(addr, r))
}

// handleCompare runs every algorithm between ?source= and ?target= and
// returns their paths as a GeoJSON FeatureCollection.
func (v *viewer) handleCompare(w http.ResponseWriter, r *http.Request) {
	s, err := nodeParam(r, "source")
	if err != nil {
		render.Render(w, r, api.ErrInvalidRequest(err))
		return
	}
	t, err := nodeParam(r, "target")
	if err != nil {
		render.Render(w, r, api.ErrInvalidRequest(err))
		return
	}

	runs := make([]routing.Stats, 0, len(routing.Algorithms()))
	for _, alg := range routing.Algorithms() {
		st, err := routing.Search(alg, v.g, s, t, v.opts...)
		if err != nil {
			render.Render(w, r, api.ErrInvalidRequest(err))
			return
		}
		runs = append(runs, st)
	}

	data, err := report.CompareFeatureCollection(v.g, runs).MarshalJSON()
	if err != nil {
		render.Render(w, r, api.ErrInternalServerError(err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func nodeParam(r *http.Request, name string) (uint32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New("missing " + name)
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return uint32(n), nil
}
