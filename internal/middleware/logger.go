package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
)

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("Request", kv...)
		case status >= 400:
			log.Warn("Request", kv...)
		default:
			log.Info("Request", kv...)
		}
	}
}
