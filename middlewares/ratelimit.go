package middlewares

import (
	"fmt"
	"math"
	"net/http"

	"speakcoach/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware rejects callers that exceed the request window with
// HTTP 429 and a Retry-After header. A nil limiter disables limiting.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		callerID := c.GetString("userId")
		if callerID == "" {
			callerID = c.ClientIP()
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), callerID)
		if err != nil {
			// Redis trouble should not take the API down.
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
