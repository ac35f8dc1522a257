package middleware

import "github.com/gin-gonic/gin"

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta seeds the per-request metadata map that handlers enrich
// and attach to their response envelopes.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]any{})
		c.Next()
	}
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata map stored on the context, or nil when
// the seeding middleware did not run.
func ExtractMeta(c *gin.Context) map[string]any {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]any); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]any {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]any{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
