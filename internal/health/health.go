// Package health provides health check and readiness probe endpoints.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the service is healthy.
	StatusHealthy Status = "healthy"
	// StatusUnhealthy indicates the service is unhealthy.
	StatusUnhealthy Status = "unhealthy"
)

// DefaultProbeTimeout bounds a single readiness check.
const DefaultProbeTimeout = 5 * time.Second

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse represents the readiness check response.
type ReadinessResponse struct {
	Status    Status           `json:"status"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents an individual readiness check result.
type Check struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a readiness check.
type CheckFunc func(ctx context.Context) error

// Checker provides health and readiness checking.
type Checker struct {
	version   string
	startTime time.Time
	checks    map[string]CheckFunc
	mu        sync.RWMutex
}

// NewChecker creates a new health checker.
func NewChecker(version string) *Checker {
	return &Checker{
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a readiness check function.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Health returns the liveness status.
func (c *Checker) Health() HealthResponse {
	return HealthResponse{
		Status:    StatusHealthy,
		Version:   c.version,
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
}

// Readiness runs the registered checks and aggregates their results.
func (c *Checker) Readiness(ctx context.Context) ReadinessResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	response := ReadinessResponse{
		Status:    StatusHealthy,
		Checks:    make(map[string]Check),
		Timestamp: time.Now(),
	}

	for name, checkFunc := range c.checks {
		checkCtx, cancel := context.WithTimeout(ctx, DefaultProbeTimeout)
		err := checkFunc(checkCtx)
		cancel()

		if err != nil {
			response.Checks[name] = Check{Status: StatusUnhealthy, Message: err.Error()}
			response.Status = StatusUnhealthy
		} else {
			response.Checks[name] = Check{Status: StatusHealthy}
		}
	}

	return response
}

// HealthHandler returns a gin handler for the liveness endpoint.
func (c *Checker) HealthHandler() gin.HandlerFunc {
	return func(g *gin.Context) {
		g.JSON(http.StatusOK, c.Health())
	}
}

// ReadinessHandler returns a gin handler for the readiness endpoint.
func (c *Checker) ReadinessHandler() gin.HandlerFunc {
	return func(g *gin.Context) {
		response := c.Readiness(g.Request.Context())

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		g.JSON(statusCode, response)
	}
}
