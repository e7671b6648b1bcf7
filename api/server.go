// Package api provides the HTTP REST API for docchat.
//
// Endpoints:
//
//	POST /api/upload           →  ingest an uploaded document
//	POST /api/chat             →  answer one conversation turn
//	POST /api/documents/reset  →  delete all ingested documents
//	GET  /api/history          →  conversation transcript
//	POST /api/history/clear    →  clear the transcript
//	GET  /health               →  liveness probe
//	GET  /ready                →  readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, logging, rate limiting)
//   - health.go: health check endpoints
//   - documents.go: upload and reset endpoints
//   - chat.go: chat endpoint
//   - history.go: transcript endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style connection exhaustion.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	// Uploads can be large, so this is generous.
	ReadTimeout = 2 * time.Minute

	// WriteTimeout is the maximum duration for writing the response.
	// Generation can take a while on long answers.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains the dependencies for creating the API server.
type ServerConfig struct {
	Logger    log.Logger      // Optional: nil uses a no-op logger
	Engine    *rag.Engine     // Required: document ingestion and reset
	Assistant *chat.Assistant // Required: chat endpoint
	History   *history.Store  // Required: transcript endpoints
	UploadDir string          // Optional: retain uploaded files here
	RateBurst int             // Per-IP rate limit burst (0 = default 60)
}

// Server is the HTTP server for the docchat REST API.
type Server struct {
	mux     *http.ServeMux
	logger  log.Logger
	limiter *rateLimiter
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if cfg.History == nil {
		return nil, errors.New("history store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:     mux,
		logger:  logger,
		limiter: newRateLimiter(1.0, burst),
	}

	health := &healthHandler{engine: cfg.Engine}
	docs := &documentsHandler{engine: cfg.Engine, uploadDir: cfg.UploadDir, logger: logger}
	chatH := &chatHandler{assistant: cfg.Assistant, logger: logger}
	hist := &historyHandler{store: cfg.History, logger: logger}

	mux.HandleFunc("GET /health", health.liveness)
	mux.HandleFunc("GET /ready", health.readiness)

	mux.HandleFunc("POST /api/upload", docs.upload)
	mux.HandleFunc("POST /api/documents/reset", docs.reset)

	mux.HandleFunc("POST /api/chat", chatH.send)

	mux.HandleFunc("GET /api/history", hist.list)
	mux.HandleFunc("POST /api/history/clear", hist.clear)

	return s, nil
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → rate limit → routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limiter, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
