// Package server provides the gateway's HTTP server: the /proxy API,
// health probes, and the metrics endpoint.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenticmesh/agentgw/internal/config"
	"github.com/agenticmesh/agentgw/internal/health"
	"github.com/agenticmesh/agentgw/internal/observability"
	"github.com/agenticmesh/agentgw/internal/server/middleware"
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race
// conditions.
var ginModeOnce sync.Once

// Server is the gateway HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	logger     observability.Logger
	mu         sync.RWMutex
	running    bool
}

// NewServer creates a server wiring the proxy handler, health probes
// and metrics endpoint onto a gin engine.
func NewServer(cfg *config.Config, handler *ProxyHandler, checker *health.Checker, logger observability.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	engine := gin.New()

	zapLogger := observability.Zap(logger)
	engine.Use(middleware.Recovery(zapLogger))
	engine.Use(middleware.RequestID())
	if cfg.AccessLogEnabled {
		engine.Use(middleware.Logging(zapLogger))
	}
	if cfg.MaxRequestBodySize > 0 {
		engine.Use(maxRequestBodySize(cfg.MaxRequestBodySize))
	}

	s := &Server{
		engine: engine,
		config: cfg,
		logger: logger,
	}

	s.registerRoutes(handler, checker)

	return s
}

// maxRequestBodySize returns a middleware that limits request body size.
func maxRequestBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// registerRoutes wires the proxy API, probes and metrics onto the
// engine.
//
// The resource routes take a :kind segment so one handler serves agent,
// tool and service targets; the static /proxy/services listing route
// coexists with them because gin prefers static children over params.
// The method split mirrors what each backend category supports: full
// resources take GET/POST/OPTIONS, plain services additionally take
// DELETE/PATCH/HEAD through the services-only routes.
func (s *Server) registerRoutes(handler *ProxyHandler, checker *health.Checker) {
	s.engine.GET("/proxy/services", handler.ListServices)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodOptions} {
		s.engine.Handle(method, "/proxy/:kind/:name", handler.ProxyResource)
		s.engine.Handle(method, "/proxy/:kind/:name/*path", handler.ProxyResource)
	}

	for _, method := range []string{http.MethodDelete, http.MethodPatch, http.MethodHead} {
		s.engine.Handle(method, "/proxy/services/:name/*path", handler.ProxyService)
	}

	if checker != nil {
		s.engine.GET("/health", checker.HealthHandler())
		s.engine.GET("/healthz", checker.HealthHandler())
		s.engine.GET("/ready", checker.ReadinessHandler())
		s.engine.GET("/readyz", checker.ReadinessHandler())
	}

	if s.config.MetricsEnabled {
		s.engine.GET(s.config.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
}

// Engine returns the underlying gin engine, used by tests to drive the
// server without a listener.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.HTTPPort)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.engine,
		ReadTimeout: s.config.ReadTimeout,
		// WriteTimeout stays at the configured value, zero by default:
		// proxied responses may stream for arbitrarily long.
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting HTTP server",
		observability.String("address", addr),
		observability.Duration("readTimeout", s.config.ReadTimeout),
		observability.Duration("writeTimeout", s.config.WriteTimeout),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("HTTP server stopped")
	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
