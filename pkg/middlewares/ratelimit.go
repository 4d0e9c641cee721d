package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/novabank/payportal/pkg"
)

// RateLimit rejects requests once the client IP exhausts its token bucket.
// The limiter itself is shared infrastructure; this middleware only translates
// a refusal into a 429 response.
func RateLimit(limiter *pkg.DistributedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(pkg.ErrTooManyRequests.Status, pkg.ErrorResponse{
				Code:    pkg.ErrTooManyRequests.Code,
				Message: pkg.ErrTooManyRequests.Message,
			})
			return
		}
		c.Next()
	}
}
