package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/monitoring"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func serveOps(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOpsRouter(t *testing.T) {
	logger := zaptest.NewLogger(t)
	health := healthcheck.New("test", logger)
	metrics := monitoring.NewMetricsCollector(logger)
	metrics.ObserveQuery("select", "dishes", 3*time.Millisecond, nil)
	router := NewOpsRouter(metrics, health, logger)

	t.Run("Liveness", func(t *testing.T) {
		w := serveOps(t, router, "/livez")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"alive"`)
	})

	t.Run("Readiness", func(t *testing.T) {
		w := serveOps(t, router, "/readyz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	})

	t.Run("Metrics", func(t *testing.T) {
		w := serveOps(t, router, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "db_query_duration_seconds")
	})
}

func TestOpsRouter_UnhealthyDependencyFailsReadiness(t *testing.T) {
	logger := zaptest.NewLogger(t)
	health := healthcheck.New("test", logger)
	health.Register("database", healthcheck.CheckerFunc(func(ctx context.Context) healthcheck.Check {
		return healthcheck.Check{Status: healthcheck.StatusUnhealthy, Message: "connection refused"}
	}))

	w := serveOps(t, NewOpsRouter(nil, health, logger), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestOpsRouter_WithoutMetrics(t *testing.T) {
	logger := zaptest.NewLogger(t)
	router := NewOpsRouter(nil, healthcheck.New("test", logger), logger)

	w := serveOps(t, router, "/metrics")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
