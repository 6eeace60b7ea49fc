package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/twpayne/go-polyline"

	"route_planner/pkg/routing"
)

const maxBodyBytes = 4096

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router   routing.Router
	validate *validator.Validate
	trans    ut.Translator
	metrics  *Metrics
}

// NewHandlers creates handlers with the given router. metrics may be nil.
func NewHandlers(router routing.Router, metrics *Metrics) *Handlers {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &Handlers{
		router:   router,
		validate: validate,
		trans:    trans,
		metrics:  metrics,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	req := &RouteRequest{}
	if !h.bind(w, r, req) {
		return
	}
	alg, err := parseAlgorithm(req.Algorithm)
	if err != nil {
		render.Render(w, r, errorFor(err))
		return
	}

	res, err := h.router.Route(r.Context(), routing.RouteQuery{
		Algorithm: alg,
		Start:     routing.LatLng{Lat: *req.Start.Lat, Lng: *req.Start.Lng},
		End:       routing.LatLng{Lat: *req.End.Lat, Lng: *req.End.Lng},
	})
	if err != nil {
		render.Render(w, r, errorFor(err))
		return
	}
	h.metrics.ObserveSearch(res.Stats)

	resp := toResponse(res)
	resp.SnapMeters = []float64{res.SnapDist[0], res.SnapDist[1]}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// HandleSearch handles POST /api/v1/search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	req := &SearchRequest{}
	if !h.bind(w, r, req) {
		return
	}
	alg, err := parseAlgorithm(req.Algorithm)
	if err != nil {
		render.Render(w, r, errorFor(err))
		return
	}

	res, err := h.router.Search(r.Context(), alg, *req.Source, *req.Target)
	if err != nil {
		render.Render(w, r, errorFor(err))
		return
	}
	h.metrics.ObserveSearch(res.Stats)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toResponse(res))
}

// HandleCompare handles POST /api/v1/compare. Unreachable targets are
// reported per algorithm with a null distance rather than as an error.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	req := &CompareRequest{}
	if !h.bind(w, r, req) {
		return
	}

	results, err := h.router.Compare(r.Context(), *req.Source, *req.Target)
	if err != nil {
		render.Render(w, r, errorFor(err))
		return
	}

	resp := CompareResponse{Results: make([]RouteResponse, 0, len(results))}
	for _, res := range results {
		h.metrics.ObserveSearch(res.Stats)
		resp.Results = append(resp.Results, toResponse(res))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	info := h.router.Info()
	algs := routing.Algorithms()
	names := make([]string, len(algs))
	for i, a := range algs {
		names[i] = a.String()
	}
	render.JSON(w, r, StatsResponse{
		NumNodes:   info.NumNodes,
		NumEdges:   info.NumEdges,
		Algorithms: names,
	})
}

// bind decodes and validates a JSON body, writing the error reply itself
// when it returns false.
func (h *Handlers) bind(w http.ResponseWriter, r *http.Request, v render.Binder) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		render.Render(w, r, ErrInvalidRequest(errors.New("content type must be application/json")))
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.Bind(r, v); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		render.Render(w, r, ErrValidation(err, h.translate(err)))
		return false
	}
	return true
}

func (h *Handlers) translate(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, e.Translate(h.trans))
	}
	return out
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// parseAlgorithm defaults to bidirectional A* when s is empty.
func parseAlgorithm(s string) (routing.Algorithm, error) {
	if s == "" {
		return routing.AlgBidirectionalAStar, nil
	}
	return routing.ParseAlgorithm(s)
}

func toResponse(res *routing.RouteResult) RouteResponse {
	resp := RouteResponse{
		Algorithm:     res.Algorithm.String(),
		Source:        res.Source,
		Target:        res.Target,
		NodesExpanded: res.NodesExpanded,
		ElapsedMs:     res.Millis(),
		Path:          []uint32{},
		Geometry:      make([]PointJSON, len(res.Geometry)),
	}
	if res.Reachable() {
		d := res.Distance
		resp.Distance = &d
		resp.Path = res.Path
		resp.Names = res.Names
	}
	coords := make([][]float64, len(res.Geometry))
	for i, ll := range res.Geometry {
		resp.Geometry[i] = PointJSON{Lat: ll.Lat, Lng: ll.Lng}
		coords[i] = []float64{ll.Lat, ll.Lng}
	}
	resp.Polyline = string(polyline.EncodeCoords(coords))
	return resp
}

// errorFor maps engine errors to HTTP replies.
func errorFor(err error) render.Renderer {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return newErr(err, http.StatusUnprocessableEntity, "point_too_far_from_road")
	case errors.Is(err, routing.ErrNoRoute):
		return newErr(err, http.StatusNotFound, "no_route_found")
	case errors.Is(err, routing.ErrNodeOutOfRange):
		return newErr(err, http.StatusBadRequest, "node_out_of_range")
	case errors.Is(err, routing.ErrUnknownAlgorithm):
		return newErr(err, http.StatusBadRequest, "unknown_algorithm")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newErr(err, http.StatusServiceUnavailable, "request_timeout")
	}
	return ErrInternalServerError(err)
}

func newErr(err error, status int, code string) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		Code:           code,
		ErrorText:      err.Error(),
	}
}

// ErrInvalidRequest is the reply for a body that cannot be decoded.
func ErrInvalidRequest(err error) render.Renderer {
	return newErr(err, http.StatusBadRequest, "invalid_request")
}

// ErrValidation is the reply for a decoded body that fails validation.
func ErrValidation(err error, msgs []string) render.Renderer {
	e := newErr(err, http.StatusBadRequest, "invalid_request")
	e.ErrValidation = msgs
	return e
}

// ErrInternalServerError hides the underlying error from the client.
func ErrInternalServerError(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		Code:           "internal_error",
	}
}
