// Package server exposes the plant database and card generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leafvessel/carecard/pkg/errors"
	"github.com/leafvessel/carecard/pkg/pipeline"
	"github.com/leafvessel/carecard/pkg/plant"
	"github.com/leafvessel/carecard/pkg/store"
)

// Server handles HTTP requests against a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger

	// genMu serializes card generation per scientific name so concurrent
	// requests for the same plant cannot race a fetch-and-upsert.
	genMu sync.Mutex
	gen   map[string]*sync.Mutex
}

// New creates a server.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  st,
		logger: logger,
		gen:    make(map[string]*sync.Mutex),
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/plants", s.handleListPlants)
		r.Get("/plants/{name}", s.handleGetPlant)
		r.Post("/plants/{name}/card", s.handleGenerateCard)
	})
	return r
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPlants(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []plant.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": recordsJSON(records)})
}

func (s *Server) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rec, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordJSON(*rec))
}

// cardRequest is the POST body for card generation. All fields are optional.
type cardRequest struct {
	Refresh   bool   `json:"refresh"`
	OutputDir string `json:"output_dir"`
}

// cardResponse reports a finished generation.
type cardResponse struct {
	Plant       string   `json:"plant"`
	Path        string   `json:"path"`
	Pages       int      `json:"pages"`
	Fetched     bool     `json:"fetched"`
	Truncations int      `json:"truncations"`
	Overflow    []string `json:"overflow,omitempty"`
}

func (s *Server) handleGenerateCard(w http.ResponseWriter, r *http.Request) {
	name := plant.NormalizeScientificName(chi.URLParam(r, "name"))
	if name == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "plant name is required"))
		return
	}

	var req cardRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
			return
		}
	}

	mu := s.plantMutex(name)
	mu.Lock()
	defer mu.Unlock()

	result, err := s.runner.Generate(r.Context(), pipeline.Options{
		ScientificName: name,
		OutputDir:      req.OutputDir,
		Refresh:        req.Refresh,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cardResponse{
		Plant:       result.Record.ScientificName,
		Path:        result.PDFPath,
		Pages:       result.Pages,
		Fetched:     result.Fetched,
		Truncations: len(result.Truncations),
		Overflow:    result.Overflow,
	})
}

// plantMutex returns the per-plant generation lock, creating it on first use.
func (s *Server) plantMutex(name string) *sync.Mutex {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	mu, ok := s.gen[name]
	if !ok {
		mu = &sync.Mutex{}
		s.gen[name] = mu
	}
	return mu
}

// writeError maps error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRecord:
		status = http.StatusBadRequest
	case errors.ErrCodePlantNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNotRecognized:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeUnauthorized:
		status = http.StatusBadGateway
	case errors.ErrCodeRateLimited, errors.ErrCodeTimeout, errors.ErrCodeNetwork:
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recordJSON shapes a record for API responses.
func recordJSON(rec plant.Record) map[string]string {
	out := map[string]string{
		"scientific_name": rec.ScientificName,
		"common_name":     rec.CommonName,
		"description":     rec.Description,
	}
	for _, f := range rec.CareFields() {
		out[f.Name] = f.Value
	}
	return out
}

func recordsJSON(records []plant.Record) []map[string]string {
	out := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		out = append(out, recordJSON(rec))
	}
	return out
}
