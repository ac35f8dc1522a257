package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

// Envelope is the single wire shape every endpoint answers with. Exactly
// one of Data or Error is set; Meta carries per-request annotations such
// as cache_hit and processing_time_ms.
type Envelope struct {
	Data  any              `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
	Meta  map[string]any   `json:"meta,omitempty"`
}

// JSON answers with data wrapped in the envelope.
func JSON(c *gin.Context, status int, data any, meta ...map[string]any) {
	e := Envelope{Data: data}
	if len(meta) > 0 {
		e.Meta = meta[0]
	}
	write(c, status, e)
}

// Error maps err onto the envelope's error half, taking the HTTP status
// from the error itself.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	write(c, appErr.Status, Envelope{Error: appErr})
}

// Composed payloads are cache-controlled by the gateway itself, never by
// intermediaries.
func write(c *gin.Context, status int, e Envelope) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, e)
}
