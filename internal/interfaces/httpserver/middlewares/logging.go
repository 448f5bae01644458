package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/mistralhub/internal/infrastructure/observability"
)

// LoggingMiddleware logs HTTP requests with OpenTelemetry trace context
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		logEvent := logger.Info()
		if statusCode >= 500 {
			logEvent = logger.Error()
		} else if statusCode >= 400 {
			logEvent = logger.Warn()
		}

		if traceID, spanID := observability.TraceIDs(c.Request.Context()); traceID != "" {
			logEvent = logEvent.Str("trace_id", traceID).Str("span_id", spanID)
		}
		if requestID := RequestIDFromContext(c); requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if model := c.GetString(ContextKeyModel); model != "" {
			logEvent = logEvent.Str("model", model)
		}

		logEvent.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", raw).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(errorMessage)
	}
}
