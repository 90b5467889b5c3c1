package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLength caps caller-supplied IDs; they end up in every log line.
const maxRequestIDLength = 128

// RequestIDMiddleware tags every request with an ID, reusing the caller's X-Request-ID when
// the exercise platform sends one so gradings can be traced across both services.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestIDMiddleware, or "" outside a request.
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
