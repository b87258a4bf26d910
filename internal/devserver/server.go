// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/logging"
	"github.com/jeranaias/wrench-tui/internal/vehicle"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxTopK bounds the passages a query may ask for.
	MaxTopK = 10

	// ServiceName names the server in traces.
	ServiceName = "wrench-devserver"

	maxQueryBody    = 1 << 20  // 1MB
	maxUploadBody   = 64 << 20 // 64MB
	maxUploadMemory = 32 << 20
	shutdownTimeout = 10 * time.Second
)

// =============================================================================
// SERVER
// =============================================================================

// Options configures a Server.
type Options struct {
	Addr        string
	DBPath      string
	RateLimit   float64 // requests per second per client; 0 disables
	Burst       int
	Environment string
	Version     string
	Logger      *slog.Logger
}

// Server serves the backend API over HTTP.
type Server struct {
	opts    Options
	logger  *slog.Logger
	store   *Store
	catalog *Catalog
	handler http.Handler
	http    *http.Server
}

// New opens the store and builds the handler. Call Close when done.
func New(opts Options) (*Server, error) {
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(opts.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:    opts,
		logger:  opts.Logger,
		store:   store,
		catalog: catalog,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /diagnostic-codes/{code}", s.handleDiagnostic)
	mux.HandleFunc("GET /vehicle-info/{make}/{model}/{year}", s.handleVehicleInfo)
	mux.HandleFunc("POST /upload-documents", s.handleUpload)

	s.handler = Chain(mux,
		Recover(s.logger),
		OTel(ServiceName),
		Logger(s.logger),
		CORS("*"),
		NewRateLimiter(opts.RateLimit, opts.Burst).Middleware(),
	)
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, chunks, _ := s.store.Counts(ctx)
		s.logger.Info("dev backend listening",
			"addr", s.opts.Addr,
			"environment", s.opts.Environment,
			"documents", docs,
			"chunks", chunks,
			"diagnostic_codes", s.catalog.Codes(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("dev backend shutting down")
		return s.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthStatus{
		Status:      "ok",
		Version:     s.opts.Version,
		Environment: s.opts.Environment,
	})
}

// queryBody differs from api.QueryRequest so a missing top_k can be told
// apart from zero.
type queryBody struct {
	Query   string           `json:"query"`
	TopK    *int             `json:"top_k"`
	Vehicle *vehicle.Context `json:"vehicle"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	query := strings.TrimSpace(body.Query)
	if query == "" {
		writeDetail(w, http.StatusBadRequest, "Query text is required")
		return
	}
	topK := api.DefaultTopK
	if body.TopK != nil {
		topK = *body.TopK
	}
	if topK < 1 || topK > MaxTopK {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
		return
	}
	if v := body.Vehicle; v != nil && (strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" || v.Year <= 0) {
		writeDetail(w, http.StatusUnprocessableEntity, "vehicle requires make, model and year")
		return
	}

	passages, err := s.store.Search(r.Context(), query, topK)
	if err != nil {
		s.logger.Error("query failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Query failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, BuildAnswer(query, body.Vehicle, passages, s.catalog))
}

func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.catalog.Diagnostic(r.PathValue("code"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Diagnostic code not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleVehicleInfo(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "year must be an integer")
		return
	}
	info, ok := s.catalog.Vehicle(r.PathValue("make"), r.PathValue("model"), year)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Vehicle info not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, "No files provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeDetail(w, http.StatusBadRequest, "No files provided")
		return
	}
	for _, fh := range files {
		if !acceptsPDF(fh.Filename, fh.Header.Get("Content-Type")) {
			writeDetail(w, http.StatusBadRequest,
				fmt.Sprintf("Unsupported file type for %s. Only PDF allowed.", fh.Filename))
			return
		}
	}

	result := api.UploadResult{Files: make([]string, 0, len(files))}
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		f, err := fh.Open()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to ingest documents: "+err.Error())
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to ingest documents: "+err.Error())
			return
		}

		n, err := s.store.Ingest(r.Context(), name, content)
		if err != nil {
			s.logger.Error("ingest failed", "file", name, "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to ingest documents: "+err.Error())
			return
		}
		s.logger.Info("manual ingested", "file", name, "chunks", n)
		result.IngestedCount += n
		result.Files = append(result.Files, name)
	}
	writeJSON(w, http.StatusOK, result)
}

// acceptsPDF allows PDF and generic binary parts, or any part named *.pdf.
func acceptsPDF(filename, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if mt == api.PDFContentType || mt == "application/octet-stream" {
			return true
		}
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// =============================================================================
// RESPONSES
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error as {"detail": message}.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
