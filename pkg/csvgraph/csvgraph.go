// Package csvgraph loads and writes graphs as a pair of delimited files:
// cities (id,lat,lon,name) and routes (u,v,w).
package csvgraph

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"route_planner/pkg/graph"
)

// Options controls how routes are interpreted.
type Options struct {
	// Directed keeps each route row as a single u→v edge. By default every
	// row also adds v→u.
	Directed bool
}

// LoadStats counts what a load accepted and skipped.
type LoadStats struct {
	Cities        int
	Routes        int
	SkippedCities int
	SkippedRoutes int
}

// LoadFiles opens the two files and calls Load.
func LoadFiles(citiesPath, routesPath string, opts Options) (*graph.Graph, LoadStats, error) {
	cf, err := os.Open(citiesPath)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open cities: %w", err)
	}
	defer cf.Close()

	rf, err := os.Open(routesPath)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open routes: %w", err)
	}
	defer rf.Close()

	return Load(cf, rf, opts)
}

// Load builds a graph from cities and routes data. A first record whose
// first field is not numeric is treated as a header. Rows that cannot be
// parsed, ids outside [0, graph.MaxNodes) and negative, NaN or infinite
// weights are logged and skipped.
// Node ids need not be contiguous; missing ids become unnamed nodes at (0, 0).
func Load(cities, routes io.Reader, opts Options) (*graph.Graph, LoadStats, error) {
	b := graph.NewBuilder()
	var stats LoadStats

	err := eachRecord(cities, "cities", func(line int, rec []string) {
		if len(rec) < 3 {
			log.Printf("cities line %d: expected id,lat,lon[,name], got %d fields", line, len(rec))
			stats.SkippedCities++
			return
		}
		id, err1 := parseID(rec[0])
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lon, err3 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err := errors.Join(err1, err2, err3); err != nil {
			log.Printf("cities line %d: %v", line, err)
			stats.SkippedCities++
			return
		}
		// Unquoted names may contain commas; rejoin the remaining fields.
		name := strings.TrimSpace(strings.Join(rec[3:], ","))
		b.SetNode(id, lat, lon, name)
		stats.Cities++
	})
	if err != nil {
		return nil, stats, err
	}

	err = eachRecord(routes, "routes", func(line int, rec []string) {
		if len(rec) < 3 {
			log.Printf("routes line %d: expected u,v,w, got %d fields", line, len(rec))
			stats.SkippedRoutes++
			return
		}
		u, err1 := parseID(rec[0])
		v, err2 := parseID(rec[1])
		w, err3 := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err := errors.Join(err1, err2, err3); err != nil {
			log.Printf("routes line %d: %v", line, err)
			stats.SkippedRoutes++
			return
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			log.Printf("routes line %d: invalid weight %v", line, w)
			stats.SkippedRoutes++
			return
		}
		if opts.Directed {
			b.AddEdge(u, v, w)
		} else {
			b.AddRoute(u, v, w)
		}
		stats.Routes++
	})
	if err != nil {
		return nil, stats, err
	}

	g, err := b.Build()
	if err != nil {
		return nil, stats, err
	}
	return g, stats, nil
}

// eachRecord calls fn for every non-header record of r.
func eachRecord(r io.Reader, what string, fn func(line int, rec []string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Printf("%s line %d: %v", what, perr.Line, perr.Err)
				continue
			}
			return fmt.Errorf("read %s: %w", what, err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if !looksNumeric(rec[0]) {
				continue
			}
		}
		fn(line, rec)
	}
}

// looksNumeric reports whether s consists only of digits, '-' and '.'.
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '-' && c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func parseID(s string) (uint32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= graph.MaxNodes {
		return 0, fmt.Errorf("node id %d out of range [0, %d)", n, graph.MaxNodes)
	}
	return uint32(n), nil
}

// WriteCities writes every node of g as id,lat,lon,name with a header row.
func WriteCities(w io.Writer, g *graph.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "lat", "lon", "name"}); err != nil {
		return err
	}
	for u := range uint32(g.NumNodes()) {
		lat, lon := g.Coordinates(u)
		rec := []string{
			strconv.FormatUint(uint64(u), 10),
			strconv.FormatFloat(lat, 'f', -1, 64),
			strconv.FormatFloat(lon, 'f', -1, 64),
			g.Name(u),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRoutes writes g's edges as u,v,w with a header row. With
// undirected set, only one of each symmetric pair (u <= v) is written, so the
// output reloads to the same graph with Options{}. A route u,u adds two
// identical u→u edges, so every second self-loop is dropped.
func WriteRoutes(w io.Writer, g *graph.Graph, undirected bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"u", "v", "w"}); err != nil {
		return err
	}
	for u := range uint32(g.NumNodes()) {
		odd := false
		for _, e := range g.OutEdges(u) {
			if undirected {
				if e.To < u {
					continue
				}
				if e.To == u {
					odd = !odd
					if !odd {
						continue
					}
				}
			}
			rec := []string{
				strconv.FormatUint(uint64(u), 10),
				strconv.FormatUint(uint64(e.To), 10),
				strconv.FormatFloat(e.Weight, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
