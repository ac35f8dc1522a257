package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarmf343/vea-2025-sub005/internal/service"
)

func TestMetricsHandlerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	handler.Health(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime_seconds")
}

func TestMetricsHandlerReadyNoProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandlerReadyDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil,
		ReadinessProbe{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
		ReadinessProbe{Name: "portal", Check: func(context.Context) error { return nil }},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	handler.Ready(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["portal"])
	assert.Contains(t, body.Checks["redis"], "refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/students/:studentId/dashboard", http.StatusOK, 0)
	handler := NewMetricsHandler(metrics)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	handler.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsHandlerPrometheusWithoutRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	handler.Prometheus(c)
	// Flush gin's deferred status write, as the engine does after each
	// handler chain; a bare c.Status never reaches the recorder otherwise.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
