package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/edutrack/internal/logging"
)

const requestIDKey = "request_id"

// RequestIDFromContext returns the identifier RequestID assigned to c.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// loggerFor returns the request scoped logger, or fallback outside a logged
// request.
func loggerFor(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if logger := logging.FromContext(c.Request.Context()); logger != nil {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
