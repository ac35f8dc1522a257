package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/umarmf343/vea-2025-sub005/internal/service"
)

// Metrics tracks in-flight requests and records one observation per
// finished request. The scrape endpoint itself is excluded so Prometheus
// polling does not skew the request histograms.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		inFlightDone := metrics.TrackInFlight()
		start := time.Now()
		c.Next()
		inFlightDone()

		metrics.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

// routeLabel prefers the route template; raw paths would explode label
// cardinality per student ID. Unmatched requests fall back to the raw path.
func routeLabel(c *gin.Context) string {
	if tmpl := c.FullPath(); tmpl != "" {
		return tmpl
	}
	return c.Request.URL.Path
}
