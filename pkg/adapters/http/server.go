// Package http serves build status, reports and diagrams, and accepts
// rebuild requests.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aretw0/dig"
	"github.com/aretw0/dig/internal/presentation/report"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Engine is the part of *dig.Engine the server needs.
type Engine interface {
	Trigger(ctx context.Context) error
	Report(ctx context.Context) (*domain.Report, error)
	Dot(ctx context.Context, slug string) (string, error)
	Status() dig.Status
}

// Server holds the handlers.
type Server struct {
	Engine   Engine
	Streams  *StreamManager
	imageDir string
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithImageDir serves rendered images from dir under /png/.
func WithImageDir(dir string) Option {
	return func(s *Server) {
		s.imageDir = dir
	}
}

// WithMetrics serves h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStreams shares a StreamManager fed by the engine's lifecycle hooks.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/rebuild", s.Rebuild)
	r.Get("/report", s.GetReport)
	r.Get("/report.md", s.GetReportMarkdown)
	r.Get("/dot/{slug}", s.GetDot)
	r.Get("/{slug}.json", s.GetReportPage)
	if s.imageDir != "" {
		r.Get("/png/{file}", s.GetImage)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "dig-http",
		"version": strings.TrimSpace(dig.Version),
		"site":    s.Engine.Status().Site,
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Status())
}

// Rebuild handles the POST /rebuild request.
func (s *Server) Rebuild(w http.ResponseWriter, r *http.Request) {
	err := s.Engine.Trigger(r.Context())
	switch {
	case errors.Is(err, domain.ErrBuildInProgress):
		s.writeJSON(w, http.StatusConflict, map[string]string{"status": "running", "error": err.Error()})
	case err != nil:
		s.fail(w, "Rebuild", err)
	default:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}

// GetReport handles the GET /report request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// GetReportMarkdown handles the GET /report.md request.
func (s *Server) GetReportMarkdown(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, report.Markdown(rep))
}

// GetReportPage handles GET /{slug}.json for the generated report pages,
// in the federated wiki page format.
func (s *Server) GetReportPage(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	page, ok := report.Pages(rep)[chi.URLParam(r, "slug")]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// GetDot handles the GET /dot/{slug} request.
func (s *Server) GetDot(w http.ResponseWriter, r *http.Request) {
	dot, err := s.Engine.Dot(r.Context(), chi.URLParam(r, "slug"))
	switch {
	case errors.Is(err, domain.ErrNoReport), errors.Is(err, domain.ErrNoDiagram):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.fail(w, "GetDot", err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	io.WriteString(w, dot)
}

// GetImage handles the GET /png/{file} request.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".png") {
		http.Error(w, "invalid image name", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, filepath.Join(s.imageDir, name))
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	rep, err := s.Engine.Report(r.Context())
	if errors.Is(err, domain.ErrNoReport) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.fail(w, "Report", err)
		return nil, false
	}
	return rep, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.logger.Error(op+" failed", "error", err)
}
