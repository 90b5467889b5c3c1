package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as uncacheable. Gradings carry student submissions.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
