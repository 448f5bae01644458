package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/janhq/mistralhub/internal/infrastructure/metrics"
)

// Keys routes set on the gin context so request metrics and logs carry them.
const (
	ContextKeyModel  = "model"
	ContextKeyStream = "stream"
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			c.GetString(ContextKeyModel),
			c.GetBool(ContextKeyStream),
			time.Since(start).Seconds(),
		)
	}
}
