// Package server implements the TuneGAN HTTP API.
//
// The API exposes generation and track management:
//
//	POST   /api/v1/generate          generate a track from a prompt
//	GET    /api/v1/tracks            list stored tracks
//	GET    /api/v1/tracks/{id}       fetch track metadata
//	GET    /api/v1/tracks/{id}/audio stream the track's WAV audio
//	DELETE /api/v1/tracks/{id}       remove a track
//	GET    /api/v1/about             service and model information
//	GET    /healthz                  liveness probe
package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adityaaj2003/tunegan/internal/config"
	"github.com/adityaaj2003/tunegan/pkg/pipeline"
	"github.com/adityaaj2003/tunegan/pkg/store"
)

// Server wires the pipeline runner and track store behind the HTTP API.
type Server struct {
	cfg     config.Config
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	http    *http.Server
	limiter *rateLimiter

	started time.Time
}

// New builds a server from its dependencies. The audio directory is
// created if missing.
func New(cfg config.Config, runner *pipeline.Runner, st store.Store, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(cfg.Server.AudioDir, 0o755); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		store:   st,
		logger:  logger,
		limiter: newRateLimiter(cfg.Server.GenerateRPM),
		started: time.Now(),
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// routes builds the chi router with middleware and all endpoints.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestWait()))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.limitGenerate).Post("/generate", s.handleGenerate)
		r.Get("/about", s.handleAbout)
		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", s.handleListTracks)
			r.Get("/{id}", s.handleGetTrack)
			r.Get("/{id}/audio", s.handleTrackAudio)
			r.Delete("/{id}", s.handleDeleteTrack)
		})
	})

	return r
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Server.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownWait())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownWait())
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
