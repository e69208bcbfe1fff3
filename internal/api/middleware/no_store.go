package middleware

import "github.com/gin-gonic/gin"

// NoStoreMiddleware keeps intermediaries from caching near-real-time
// messaging state.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Next()
	}
}
