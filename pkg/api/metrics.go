package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"route_planner/pkg/routing"
)

// Metrics holds the Prometheus collectors exported on /metrics.
type Metrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	nodesExpanded *prometheus.HistogramVec
	searchSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_planner",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "route_planner",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		nodesExpanded: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "route_planner",
			Name:      "search_nodes_expanded",
			Help:      "Nodes expanded per search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"algorithm"}),
		searchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "route_planner",
			Name:      "search_duration_seconds",
			Help:      "Time spent inside a single search.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"algorithm"}),
	}
	reg.MustRegister(m.requests, m.latency, m.nodesExpanded, m.searchSeconds)
	return m
}

// ObserveSearch records one search. A nil Metrics is a no-op.
func (m *Metrics) ObserveSearch(st routing.Stats) {
	if m == nil {
		return
	}
	alg := st.Algorithm.String()
	m.nodesExpanded.WithLabelValues(alg).Observe(float64(st.NodesExpanded))
	m.searchSeconds.WithLabelValues(alg).Observe(st.Elapsed.Seconds())
}

// Middleware counts requests and measures latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
