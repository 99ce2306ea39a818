package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"proximity-service/pkg/logger"
)

// LogAPI logs one line per request through the shared logger.
func LogAPI(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
			"errors", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}
