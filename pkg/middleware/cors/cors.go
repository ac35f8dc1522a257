package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowMethods  = "GET, POST, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	preflightHint = "300"
)

// New builds a CORS middleware for the gateway's browser clients. An empty
// origin list allows every origin. The allowed origin is always echoed back
// rather than "*" because responses carry credentials, and browsers refuse
// the wildcard in that combination.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if normalized := canonicalOrigin(origin); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[canonicalOrigin(origin)]; ok || allowAll {
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Allow-Methods", allowMethods)
				header.Set("Access-Control-Allow-Headers", allowHeaders)
				header.Set("Access-Control-Max-Age", preflightHint)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// canonicalOrigin lowercases the scheme and host and drops a trailing slash
// so configured values match what browsers actually send.
func canonicalOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
