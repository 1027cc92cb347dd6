package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"igresolver/pkg/config"
	"igresolver/pkg/logger"
	"igresolver/pkg/ratelimit"
)

// Server is the HTTP front of the resolver.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

// NewServer builds the router and wires middleware and routes.
func NewServer(cfg *config.Config, res Resolver, dl MediaDownloader, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	handlers := NewHandlers(res, dl, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", handlers.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			limiter := ratelimit.NewPerKey(cfg.RateLimit.RequestsPerHour, time.Hour)
			r.Use(rateLimitMiddleware(limiter))
		}

		r.Get("/download", handlers.HandleDownload)
		r.Get("/resolve", handlers.HandleDownload)
		r.Get("/thumbnail", handlers.HandleThumbnail)
		r.Post("/batch-download", handlers.HandleBatch)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.ListenAddr,
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: log,
	}
}

// Handler exposes the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.InfoWithFields("http server listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
