// Package api serves the dashboard views as a JSON API. Every user works in
// a session that owns its own selection.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outlet-density/internal/dashboard"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	RatePerSec  float64
	Burst       int
	SessionTTL  time.Duration
}

// Server holds the engine, the live sessions and the request limiter.
type Server struct {
	engine   *dashboard.Engine
	sessions *dashboard.Sessions
	limiter  *rate.Limiter
	cors     []string
	log      *zap.Logger
}

// NewServer creates a Server over engine.
func NewServer(engine *dashboard.Engine, opts Options) *Server {
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		engine:   engine,
		sessions: dashboard.NewSessions(engine, opts.SessionTTL),
		limiter:  rate.NewLimiter(limit, burst),
		cors:     origins,
		log:      zap.L().With(zap.String("component", "api")),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cors,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.instrument)
		r.Use(s.rateLimit)

		r.Get("/regions", s.regions)
		r.Get("/diagnostics/names", s.diagnoseNames)

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.sessionState)
			r.Put("/states", s.putStates)
			r.Put("/districts", s.putDistricts)
			r.Put("/region", s.putRegion)
			r.Put("/overlay", s.putOverlay)

			r.Get("/map", s.mapView)
			r.Get("/charts/states", s.stateChart)
			r.Get("/charts/districts", s.districtChart)
			r.Get("/density", s.densityTable)
			r.Get("/density.xlsx", s.densityXLSX)
			r.Get("/insights", s.insights)
		})
	})

	return r
}
