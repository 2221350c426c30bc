package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(checks map[string]HealthCheck) *gin.Engine {
	r := gin.New()
	r.GET("/health", NewSystemHandler("store-admin", "1.2.3", checks).Health)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy without checks", func(t *testing.T) {
		w := httptest.NewRecorder()
		healthRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var health HealthResponse
		resp := decodeResponse(t, w, &health)
		assert.True(t, resp.Success)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "store-admin", health.Name)
		assert.Equal(t, "1.2.3", health.Version)
		assert.Empty(t, health.Checks)
	})

	t.Run("failed dependency", func(t *testing.T) {
		w := httptest.NewRecorder()
		healthRouter(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var health HealthResponse
		resp := decodeResponse(t, w, &health)
		assert.False(t, resp.Success)
		assert.Equal(t, "unhealthy", health.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "connection refused"}, health.Checks)
	})
}
