package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ginTestModeOnce sync.Once

func newTestEngine() *gin.Engine {
	ginTestModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
	return gin.New()
}

func TestHealth(t *testing.T) {
	t.Parallel()

	c := NewChecker("1.2.3")
	resp := c.Health()

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadiness_AllHealthy(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("registry", func(ctx context.Context) error { return nil })
	c.RegisterCheck("secrets", func(ctx context.Context) error { return nil })

	resp := c.Readiness(context.Background())

	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusHealthy, resp.Checks["registry"].Status)
}

func TestReadiness_FailingCheck(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("registry", func(ctx context.Context) error { return nil })
	c.RegisterCheck("secrets", func(ctx context.Context) error {
		return errors.New("vault unreachable")
	})

	resp := c.Readiness(context.Background())

	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["registry"].Status)
	assert.Equal(t, StatusUnhealthy, resp.Checks["secrets"].Status)
	assert.Equal(t, "vault unreachable", resp.Checks["secrets"].Message)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	engine := newTestEngine()
	engine.GET("/health", NewChecker("test").HealthHandler())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	t.Parallel()

	c := NewChecker("test")
	c.RegisterCheck("registry", func(ctx context.Context) error {
		return errors.New("api server down")
	})

	engine := newTestEngine()
	engine.GET("/ready", c.ReadinessHandler())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "api server down")
}
