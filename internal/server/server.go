// Package server provides the HTTP server and routing for the terminal bridge.
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

	"github.com/fincept/autotrade-bridge/internal/config"
	"github.com/fincept/autotrade-bridge/internal/events"
	"github.com/fincept/autotrade-bridge/internal/modules/performance"
	"github.com/fincept/autotrade-bridge/internal/modules/portfolio"
	"github.com/fincept/autotrade-bridge/internal/modules/positions"
	"github.com/fincept/autotrade-bridge/internal/modules/screener"
	"github.com/fincept/autotrade-bridge/internal/modules/status"
	"github.com/fincept/autotrade-bridge/internal/modules/strategies"
)

// Handlers collects the module handlers mounted under /api
type Handlers struct {
	Portfolio   *portfolio.Handler
	Performance *performance.Handler
	Positions   *positions.Handler
	Strategies  *strategies.Handler
	Screener    *screener.Handler
	Status      *status.Handler
	System      *SystemHandlers
}

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	EventBus *events.Bus
	Handlers Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config
	bus    *events.Bus
}

// New creates a new HTTP server with all routes mounted
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg.Config,
		bus:    cfg.EventBus,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Config.Port),
		Handler: s.router,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", cfg.Handlers.System.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// SSE stream first so its long-lived connections bypass compression
		eventsStream := NewEventsStreamHandler(s.bus, s.log)
		r.Get("/events/stream", eventsStream.ServeHTTP)

		cfg.Handlers.System.RegisterRoutes(r)
		cfg.Handlers.Status.RegisterRoutes(r)
		cfg.Handlers.Portfolio.RegisterRoutes(r)
		cfg.Handlers.Performance.RegisterRoutes(r)
		cfg.Handlers.Positions.RegisterRoutes(r)
		cfg.Handlers.Strategies.RegisterRoutes(r)
		cfg.Handlers.Screener.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
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
