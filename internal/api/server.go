package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gospc/app"
	"gospc/internal"
	"gospc/internal/config"
	apperrors "gospc/internal/errors"
	"gospc/ports"
)

// Server exposes the analysis service over HTTP: a JSON API for state
// changes, SSE for live snapshot updates, CSV and HTML exports.
type Server struct {
	router *chi.Mux
	svc    *app.AnalysisService
	hub    *SSEHub
	repo   ports.SessionRepository // nil when persistence is disabled
	cfg    *config.Config
	logger *internal.Logger
}

// NewServer wires the router. repo may be nil.
func NewServer(cfg *config.Config, svc *app.AnalysisService, hub *SSEHub, repo ports.SessionRepository) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		hub:    hub,
		repo:   repo,
		cfg:    cfg,
		logger: internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/saved", s.handleListSaved)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/summary", s.handleSummary)
			r.Post("/table", s.handleLoadTable)
			r.Put("/axes", s.handleSetAxes)
			r.Put("/filter", s.handleSetFilter)
			r.Put("/specs", s.handleSetSpecs)
			r.Get("/columns", s.handleColumns)
			r.Get("/categories", s.handleCategories)
			r.Get("/profiles", s.handleProfiles)
			r.Get("/events", s.handleEvents)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/report", s.handleReport)
			r.Post("/save", s.handleSaveState)
			r.Post("/restore", s.handleRestoreState)
			r.Delete("/saved", s.handleDeleteSaved)
		})
	})
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening on :%s", s.cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeInvalidInput, apperrors.CodeIngestFailed:
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
