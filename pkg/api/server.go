// Package api serves the pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness and build version
//	POST /v1/parse     DSL text in, snapshot JSON out
//	POST /v1/layout    pipeline options in, geometry JSON out
//	POST /v1/render    pipeline options in, one artifact out
//
// Layout and render requests take a JSON body shaped like
// [pipeline.Options]. Fields left out of the body keep the server
// defaults. /v1/render renders a single format, chosen by the "format"
// query parameter or the first entry of "formats"; "style" selects the
// renderer the same way.
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with "code" and "error" fields.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
)

// Server handles layout requests.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	maxBody  int64
	logger   *log.Logger
	router   chi.Router
	server   *http.Server
}

// New creates a server that runs requests through runner. defaults fills
// every option a request leaves out.
func New(runner *pipeline.Runner, defaults pipeline.Options, cfg config.Server, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner:   runner,
		defaults: defaults,
		maxBody:  cfg.MaxBody,
		logger:   logger,
	}
	if s.maxBody <= 0 {
		s.maxBody = config.Default().Server.MaxBody
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/parse", s.handleParse)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	s.router = r

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
