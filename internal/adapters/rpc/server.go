// Package rpc serves the book query endpoint over HTTP.
package rpc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zegnus/graph-ql-end-to-end-android/internal/graph"
	"github.com/zegnus/graph-ql-end-to-end-android/internal/platform/ratelimiter"
	"github.com/zegnus/graph-ql-end-to-end-android/pkg/models"
)

const (
	DefaultAddr     = "127.0.0.1:4000"
	shutdownTimeout = 5 * time.Second
)

// Executor runs one decoded GraphQL request.
type Executor interface {
	ExecuteRequest(ctx context.Context, req models.GraphQLRequest) graph.Result
}

type Options struct {
	Addr            string
	AllowNullOrigin bool
	// BookCount is reported by /healthz.
	BookCount int
	// Limiter throttles /graphql per client; nil disables limiting.
	Limiter *ratelimiter.Keyed
	// Registry receives HTTP metrics and is exposed on /metrics when set.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	exec       Executor
	opts       Options
	logger     *slog.Logger
	metrics    *httpMetrics
}

func NewServer(exec Executor, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		mux:    mux,
		exec:   exec,
		opts:   opts,
		logger: logger,
	}
	if opts.Registry != nil {
		s.metrics = newHTTPMetrics(opts.Registry)
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/graphql", s.handleGraphQL)
	mux.HandleFunc("/graphql/{$}", s.handleGraphQL)
	return s
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.exec == nil {
		return errors.New("rpc: executor is not initialized")
	}
	select {
	case <-ctx.Done():
		return nil
	default:
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()
	s.logger.Info("graphql server listening", "component", "rpc.server", "addr", s.httpServer.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.applyCORS(w, r) {
		return
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "books": s.opts.BookCount})
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(buf)
}
