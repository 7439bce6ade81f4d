// Package server exposes the dashboard over HTTP: a GeoJSON map layer, the
// summary panel, the ranked table and per-region tooltips.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/model"
	"github.com/sells-group/state-dashboard/internal/pipeline"
	"github.com/sells-group/state-dashboard/pkg/metrics"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins  []string
	DefaultCategory string
	DefaultYear     int
	Center          []float64
	Zoom            int

	// Metrics records request metrics. When it is a *metrics.Manager its
	// registry is also served at /metrics.
	Metrics metrics.Recorder
}

// Server serves views drawn from a Dashboard.
type Server struct {
	dash *pipeline.Dashboard
	opts Options
}

// New creates a server for dash.
func New(dash *pipeline.Dashboard, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{dash: dash, opts: opts}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/map", s.handleMap)
		r.Get("/summary", s.handleSummary)
		r.Get("/table", s.handleTable)
		r.Get("/regions/{name}", s.handleRegion)
		r.Get("/selection-options", s.handleOptions)
	})

	if m, ok := s.opts.Metrics.(*metrics.Manager); ok {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return r
}

// observe logs and records every request by its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.opts.Metrics.RecordHTTPRequest(route, r.Method, status, elapsed)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// selection builds the request's selection from query parameters, falling
// back to the configured defaults.
func (s *Server) selection(r *http.Request) (model.Selection, error) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = s.opts.DefaultCategory
	}
	yearText := q.Get("year")
	sel, err := model.ParseSelection(yearText, category)
	if err != nil {
		return model.Selection{}, err
	}
	if yearText == "" {
		sel = sel.WithYear(s.opts.DefaultYear)
	}
	return sel, nil
}
