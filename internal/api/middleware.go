package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pj4239460/story-graph-assistant/internal/logger"
)

const requestIDHeader = "X-Request-ID"
const contextKeyRequestID = "request_id"

// requestID returns the per-request correlation id stashed by
// requestLogger, or "" if called outside a request.
func requestID(c *gin.Context) string {
	v, ok := c.Get(contextKeyRequestID)
	if !ok {
		return ""
	}
	return v.(string)
}

// recoveryMiddleware turns a panic in a handler into a 500 response
// instead of killing the process, logging the stack for diagnosis.
func recoveryMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"request_id", requestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				apiErr := NewAPIError("INTERNAL_ERROR", fmt.Sprintf("internal server error (request_id: %s)", requestID(c)), http.StatusInternalServerError)
				c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
			}
		}()
		c.Next()
	}
}

// requestLogger stamps every request with a correlation id and logs its
// outcome at a level proportional to its status code.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(requestIDHeader, id)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		args := []interface{}{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}

		switch {
		case status >= 500:
			log.Error("request completed", args...)
		case status >= 400:
			log.Warn("request completed", args...)
		default:
			log.Info("request completed", args...)
		}
	}
}
