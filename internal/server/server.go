// Package server exposes the formatters and the field masker over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/agbru/fieldfmt/internal/config"
	"github.com/agbru/fieldfmt/internal/logging"
	"github.com/agbru/fieldfmt/internal/metrics"
)

// shutdownTimeout bounds the graceful shutdown of Start.
const shutdownTimeout = 5 * time.Second

// Server serves the fieldfmt HTTP API.
type Server struct {
	cfg      config.AppConfig
	logger   logging.Logger
	metrics  *Metrics
	memory   *metrics.MemoryCollector
	security SecurityConfig
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSecurityConfig replaces the default security configuration.
func WithSecurityConfig(c SecurityConfig) Option {
	return func(s *Server) { s.security = c }
}

// NewServer creates a server for cfg.
func NewServer(cfg config.AppConfig, opts ...Option) *Server {
	security := DefaultSecurityConfig()
	security.MaxBodyBytes = cfg.MaxBodyBytes
	s := &Server{
		cfg:      cfg,
		logger:   logging.Nop(),
		metrics:  NewMetrics(),
		memory:   metrics.NewMemoryCollector(),
		security: security,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, SecurityMiddleware(s.security, s.metricsMiddleware(h)))
	}
	route("/api/price", s.handlePrice)
	route("/api/bytes", s.handleBytes)
	route("/api/mask", s.handleMask)
	route("/api/defaults", s.handleDefaults)
	route("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

// metricsMiddleware tracks active requests, counts and latency.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()
		start := time.Now()
		defer func() { s.metrics.ObserveRequest(r.URL.Path, time.Since(start)) }()
		next(w, r)
	}
}

// handleMetrics serves the Prometheus metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("method not allowed", logging.String("path", r.URL.Path), logging.String("method", r.Method))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.WritePrometheus(w, r)
}
