package server

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger tags every request with a UUID and logs it once finished
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set(requestIDKey, reqID)
		c.Writer.Header().Set(requestIDHeader, reqID)

		c.Next()

		log.Printf("HTTP[%s]: %s %s -> %d in %dms (%s)",
			reqID[:8],
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			c.ClientIP(),
		)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
