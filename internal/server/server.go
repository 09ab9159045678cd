// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/blacklist"
	"github.com/ppiankov/credence/internal/logging"
	"github.com/ppiankov/credence/internal/metrics"
	"github.com/ppiankov/credence/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Verifier runs one verification
type Verifier interface {
	Verify(ctx context.Context, req model.VerificationRequest) (*model.Outcome, error)
}

// Server is the inbound HTTP API
type Server struct {
	verifier Verifier
	store    *blacklist.Store
	metrics  *metrics.Metrics
	log      *logging.Logger

	baseURL        string
	allowedOrigins []string
	version        string

	engine *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithMetrics exposes m on /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the access and error logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithAllowedOrigins enables CORS for the given origins
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithDownstream reports the downstream base URL on /health
func WithDownstream(baseURL string) Option {
	return func(s *Server) { s.baseURL = baseURL }
}

// WithVersion reports the build version on /health
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates the server and its routes
func New(verifier Verifier, store *blacklist.Store, opts ...Option) *Server {
	s := &Server{
		verifier: verifier,
		store:    store,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(requestID(), accessLog(s.log), gin.Recovery())
	if len(s.allowedOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:  s.allowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader},
		}))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/verify", s.verify)
		v1.GET("/blacklist", s.listBlacklist)
		v1.GET("/blacklist/lookup", s.lookupBlacklist)
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
