// Package server exposes the scheme listing pipeline, the job feed, weather
// lookups and the data.gov.in pass-through proxy over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/krishi-connect/pkg/cache"
	"github.com/Sternrassler/krishi-connect/pkg/jobs"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
	"github.com/Sternrassler/krishi-connect/pkg/metrics"
	"github.com/Sternrassler/krishi-connect/pkg/pipeline"
	"github.com/Sternrassler/krishi-connect/pkg/weather"
)

// Upstream performs single proxied requests. *client.Client satisfies it.
type Upstream interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// ProxyURL is the upstream resource including api-key and format.
	ProxyURL string

	// ProxyPageSize is the pageSize forwarded when the caller sends none.
	ProxyPageSize int
}

// Deps are the collaborators behind the routes. Only Pipeline is required;
// routes whose collaborator is nil answer 503.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Store    cache.Store
	Jobs     *jobs.Feed
	Weather  *weather.Client
	Upstream Upstream
}

// Server routes HTTP requests.
type Server struct {
	router *chi.Mux
	cfg    Config
	deps   Deps
	logger zerolog.Logger
}

// New creates a server with all routes mounted.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg.ProxyPageSize <= 0 {
		cfg.ProxyPageSize = 9
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewLogger("server"),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(logging.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/schemes", s.handleListSchemes)
		r.Post("/schemes/refresh", s.handleRefreshSchemes)
		r.Get("/schemes/{id}", s.handleSchemeDetails)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/weather", s.handleWeather)
	})

	s.router.Get("/proxy/schemes", s.handleProxySchemes)
}

// Router returns the root handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
