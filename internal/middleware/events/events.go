// Package events provides request logging middleware
package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/logger"
)

const (
	// RequestIDKey is the gin context key holding the request id
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed back to the client and accepted from proxies
	RequestIDHeader = "X-Request-ID"
)

// CreateEvent returns a middleware function that logs request details
func CreateEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		log := logger.HTTP()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log.Debug("Request started",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		logLevel := log.Info
		if status >= 500 {
			logLevel = log.Error
		} else if status >= 400 {
			logLevel = log.Warn
		}

		logLevel("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}

// RequestID returns the id assigned by CreateEvent, or "" outside it
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
