package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umarmf343/vea-2025-sub005/internal/service"
)

const probeTimeout = 2 * time.Second

// ReadinessProbe checks one dependency for the /ready endpoint.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// MetricsHandler serves the operational endpoints: liveness, readiness and
// the Prometheus scrape target.
type MetricsHandler struct {
	metrics *service.MetricsService
	started time.Time
	probes  []ReadinessProbe
}

// NewMetricsHandler constructs the handler. Probes are optional; with none
// registered, /ready reports ready as soon as the process serves traffic.
func NewMetricsHandler(metrics *service.MetricsService, probes ...ReadinessProbe) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		started: time.Now().UTC(),
		probes:  probes,
	}
}

// Health is the liveness endpoint.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// Ready runs every registered probe. Any failure flips the endpoint to 503
// with the failing dependencies named, so orchestration can hold traffic.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.probes))
	healthy := true
	for _, probe := range h.probes {
		if err := probe.Check(ctx); err != nil {
			checks[probe.Name] = err.Error()
			healthy = false
			continue
		}
		checks[probe.Name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

// Prometheus serves the scrape endpoint backed by the gateway's registry.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
