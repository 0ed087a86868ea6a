// Package web serves the stored Mars document as a page and exposes the
// route that refreshes it.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/observability"
	"github.com/IshaanNene/marsboard/internal/storage"
	"github.com/IshaanNene/marsboard/internal/types"
)

// Refresher runs a scrape and stores its result.
type Refresher interface {
	Refresh(ctx context.Context) (*types.ScrapeResult, error)
}

// Server is the web frontend.
type Server struct {
	cfg     *config.Config
	store   storage.Sink
	scraper Refresher
	metrics *observability.Metrics
	logger  *slog.Logger

	mux   *http.ServeMux
	pages *template.Template
	http  *http.Server
}

// NewServer creates the frontend. metrics may be nil, in which case the
// metrics route is not registered.
func NewServer(cfg *config.Config, store storage.Sink, scraper Refresher, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		scraper: scraper,
		metrics: metrics,
		logger:  logger.With("component", "web_server"),
		mux:     http.NewServeMux(),
		pages:   pages,
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and blocks until the server is
// shut down.
func (s *Server) Start() error {
	s.logger.Info("web server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server stopping")
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /scrape", s.handleScrape)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/mars", s.handleMars)

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.mux.Handle("GET "+s.cfg.Metrics.Path, s.metrics)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Read(r.Context())
	if err != nil && !errors.Is(err, types.ErrNoDocument) {
		s.logger.Error("read stored document", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Could not load the stored Mars data.", err)
		return
	}

	data := indexData{Version: config.Version}
	if doc != nil {
		data.Mars = doc
		data.Facts = template.HTML(doc.FactsHTML)
	}
	if s.metrics != nil {
		data.LastSuccess = s.metrics.LastSuccess()
	}
	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.ScrapeTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.scraper.Refresh(ctx); err != nil {
		s.logger.Error("scrape request failed", "error", err, "duration", time.Since(start))
		s.renderError(w, http.StatusInternalServerError, "The scrape failed. The previous data was kept.", err)
		return
	}

	s.logger.Info("scrape request complete", "duration", time.Since(start))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": config.Version,
		"storage": s.store.Name(),
	}
	if s.metrics != nil {
		if last := s.metrics.LastSuccess(); !last.IsZero() {
			resp["last_success"] = last.Format(time.RFC3339)
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleMars(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Read(r.Context())
	if errors.Is(err, types.ErrNoDocument) {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "no document stored yet"})
		return
	}
	if err != nil {
		s.logger.Error("read stored document", "error", err)
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
