package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/umarmf343/vea-2025-sub005/pkg/config"
	"github.com/umarmf343/vea-2025-sub005/pkg/middleware/requestid"
)

// New builds the process logger. Production gets sampled JSON output,
// everything else a development config, with level and encoding
// overridable through LOG_LEVEL and LOG_FORMAT.
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Encoding = "json"
	if cfg.Log.Format == "console" {
		zapCfg.Encoding = "console"
	}

	if lvl := cfg.Log.Level; lvl != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(lvl)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]any{"service": "student-gateway"}

	return zapCfg.Build()
}

// probe endpoints poll frequently and would drown the access log.
var accessLogSkip = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// GinMiddleware emits one access log entry per request, levelled by
// response status.
func GinMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if accessLogSkip[path] {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}

		switch {
		case status >= 500:
			log.Error("http_request", fields...)
		case status >= 400:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}
