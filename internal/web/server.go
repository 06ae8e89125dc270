// Package web exposes the orchestrator over HTTP: the message-processing
// API, context management, and operational endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carwise/llm-orchestrator/internal/observability"
	"github.com/carwise/llm-orchestrator/internal/ratelimit"
	"github.com/carwise/llm-orchestrator/internal/sanitize"
)

// RateLimiter is the quota check the process endpoint runs per request.
// *ratelimit.Limiter satisfies it.
type RateLimiter interface {
	Check(ctx context.Context, identifier string) ratelimit.Result
	Limit() int
}

// Config holds server settings and identity shown on health endpoints.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	ShutdownTimeout time.Duration

	ProviderName string
	ModelName    string
	APIKeySet    bool
}

// Server routes HTTP traffic to the orchestration core.
type Server struct {
	orchestrator Orchestrator
	limiter      RateLimiter
	guard        *sanitize.Guard
	rdb          redis.Cmdable
	logger       *observability.Logger
	metrics      *observability.Metrics

	providerName string
	modelName    string
	apiKeySet    bool

	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// NewServer wires the handlers and middleware chain.
func NewServer(cfg Config, orchestrator Orchestrator, limiter RateLimiter, guard *sanitize.Guard, rdb redis.Cmdable, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		orchestrator:    orchestrator,
		limiter:         limiter,
		guard:           guard,
		rdb:             rdb,
		logger:          logger,
		metrics:         metrics,
		providerName:    cfg.ProviderName,
		modelName:       cfg.ModelName,
		apiKeySet:       cfg.APIKeySet,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/llm/process", s.handleProcess)
	mux.HandleFunc("DELETE /api/llm/context/{session_id}", s.handleClearContext)
	mux.HandleFunc("GET /api/llm/welcome", s.handleWelcome)
	mux.HandleFunc("GET /api/llm/context/{session_id}/length", s.handleContextLength)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = mux
	handler = MetricsMiddleware(metrics)(handler)
	handler = CORSMiddleware(cfg.CORSOrigin)(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener closes. It returns nil after a graceful
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
