package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jengzang/bikeshare-insights/pkg/logger"
	"github.com/jengzang/bikeshare-insights/pkg/response"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, reusing the caller's X-Request-ID
// when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(response.RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// Logger middleware logs HTTP requests
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		logf := logger.Infof
		switch {
		case statusCode >= 500:
			logf = logger.Errorf
		case statusCode >= 400:
			logf = logger.Warnf
		}
		logf("%s %s %s %d %v id=%s %s",
			c.Request.Method,
			path,
			c.ClientIP(),
			statusCode,
			latency,
			c.GetString(response.RequestIDKey),
			c.Errors.String(),
		)
	}
}
