package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Algorithm string     `json:"algorithm"`
	Start     LatLngJSON `json:"start"`
	End       LatLngJSON `json:"end"`
}

// Bind implements render.Binder.
func (req *RouteRequest) Bind(r *http.Request) error {
	return nil
}

// SearchRequest is the JSON body for POST /api/v1/search.
type SearchRequest struct {
	Algorithm string  `json:"algorithm"`
	Source    *uint32 `json:"source" validate:"required"`
	Target    *uint32 `json:"target" validate:"required"`
}

// Bind implements render.Binder.
func (req *SearchRequest) Bind(r *http.Request) error {
	return nil
}

// CompareRequest is the JSON body for POST /api/v1/compare.
type CompareRequest struct {
	Source *uint32 `json:"source" validate:"required"`
	Target *uint32 `json:"target" validate:"required"`
}

// Bind implements render.Binder.
func (req *CompareRequest) Bind(r *http.Request) error {
	return nil
}

// PointJSON is a response coordinate.
type PointJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a single search.
type RouteResponse struct {
	Algorithm     string      `json:"algorithm"`
	Source        uint32      `json:"source"`
	Target        uint32      `json:"target"`
	Distance      *float64    `json:"distance"` // null when unreachable
	NodesExpanded int         `json:"nodes_expanded"`
	ElapsedMs     float64     `json:"elapsed_ms"`
	Path          []uint32    `json:"path"`
	Names         []string    `json:"names,omitempty"`
	Geometry      []PointJSON `json:"geometry"`
	Polyline      string      `json:"polyline"`
	SnapMeters    []float64   `json:"snap_distance_meters,omitempty"`
}

// CompareResponse is the JSON response for POST /api/v1/compare.
type CompareResponse struct {
	Results []RouteResponse `json:"results"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes   int      `json:"num_nodes"`
	NumEdges   int      `json:"num_edges"`
	Algorithms []string `json:"algorithms"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrResponse is the JSON body of every error reply.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText    string   `json:"status"`
	Code          string   `json:"error"`
	ErrorText     string   `json:"message,omitempty"`
	ErrValidation []string `json:"validation,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}
