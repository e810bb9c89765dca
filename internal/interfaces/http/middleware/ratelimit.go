package middleware

import (
	"net/http"

	"github.com/clientdesk/backend/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit returns middleware that limits requests per client IP using the
// given limiter backend
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns rate limiting middleware with a custom key extractor
func RateLimitByKey(limiter ratelimit.Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Next()
	}
}
