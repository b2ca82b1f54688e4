// Package web provides the HTTP surface of the enrolment-methods importer:
// staged file upload plus the validate and process endpoints. Responses are
// JSON only; there is no HTML UI.
package web

import (
	"context"
	"net/http"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/config"
	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Importer is the slice of the core pipeline the handlers need.
type Importer interface {
	Validate(ctx context.Context, userID int64, ref string) error
	Process(ctx context.Context, userID int64, ref string) (string, error)
}

// FileStager stores uploaded files in a user's staging area.
type FileStager interface {
	SaveStagedFile(ctx context.Context, userID int64, name string, content []byte) (int64, error)
}

// Server is the HTTP server for the import API.
type Server struct {
	importer Importer
	stager   FileStager
	msgs     core.Formatter
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the HTTP server.
func NewServer(importer Importer, stager FileStager, msgs core.Formatter, cfg *config.Config) *Server {
	s := &Server{
		importer: importer,
		stager:   stager,
		msgs:     msgs,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/files", s.handleStageFile)
		r.Post("/import/validate", s.handleValidate)
		r.Post("/import/process", s.handleProcess)
	})
}

// Start begins listening on the configured address. Blocks until the server
// stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
