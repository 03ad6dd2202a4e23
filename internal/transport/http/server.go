package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/joshdurbin/js4hs-edge/internal/service"
)

// Options wires the server's dependencies
type Options struct {
	Jobs    service.JobBoard
	Links   service.LinkService
	Health  HealthChecker
	Cache   *ResponseCache
	Metrics http.Handler

	// CacheTTL applies to the cached job routes
	CacheTTL time.Duration

	Logger  zerolog.Logger
	Verbose bool
}

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
	logger  zerolog.Logger
}

// NewRouter builds the route tree. It panics if opts.CacheTTL is invalid.
func NewRouter(opts Options, handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(NewLoggingMiddleware(opts.Verbose).Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/jobs", func(jobs chi.Router) {
			jobs.Post("/", handler.CreateJob)

			jobs.Group(func(cached chi.Router) {
				if opts.Cache != nil {
					cached.Use(opts.Cache.MustCache(opts.CacheTTL))
				}
				cached.Get("/", handler.ListJobs)
				cached.Get("/{id}", handler.GetJob)
			})
		})

		api.Route("/qr", func(qr chi.Router) {
			qr.Get("/link", handler.IssueLink)
			qr.Get("/validate", handler.ValidateLink)
		})
	})

	return r
}

// NewServer creates a new HTTP server
func NewServer(opts Options, port string) *Server {
	handler := NewHandler(opts.Jobs, opts.Links, opts.Health)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(opts, handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    port,
		logger:  opts.Logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.port).Msg("server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}

// HTTPHandler returns the full middleware and route stack
func (s *Server) HTTPHandler() http.Handler {
	return s.server.Handler
}
