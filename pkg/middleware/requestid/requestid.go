package requestid

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header is the wire header the request ID travels in, both directions.
const Header = "X-Request-ID"

const contextKey = "request_id"

const maxInboundLen = 64

// Middleware tags every request with an ID and reflects it in the response
// so a portal trace and a gateway log line can be tied together. An inbound
// ID from the caller is reused when it looks sane; anything oversized or
// containing whitespace is replaced.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(Header))
		if !acceptable(id) {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID stored on the Gin context, or "".
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, isString := v.(string); isString {
			return id
		}
	}
	return ""
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxInboundLen {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n")
}
