// Package server provides the HTTP server and routing for the stress service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-stress/internal/database"
	stresshandlers "github.com/aristath/sentinel-stress/internal/modules/stress/handlers"
	"github.com/aristath/sentinel-stress/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Stress    *stresshandlers.Handler
	Metrics   *MetricsRegistry
	HistoryDB *database.DB          // optional
	Scheduler *scheduler.Scheduler // optional
	Jobs      []scheduler.Job
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	stress         *stresshandlers.Handler
	metrics        *MetricsRegistry
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetricsRegistry()
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		stress:         cfg.Stress,
		metrics:        metrics,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.HistoryDB, cfg.Scheduler, cfg.Jobs),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Metrics
	s.router.Use(s.metrics.Middleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if s.stress != nil {
			s.stress.RegisterRoutes(r)
		}

		r.Route("/system", func(r chi.Router) {
			r.Get("/jobs", s.systemHandlers.HandleJobs)
			r.Post("/jobs/{name}/run", s.systemHandlers.HandleRunJob)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for pending report uploads
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	err := s.server.Shutdown(ctx)
	if s.stress != nil {
		s.stress.Wait()
	}
	return err
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
