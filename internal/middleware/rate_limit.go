package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loveall/loveall-backend/internal/services"
)

// RateLimit rejects requests from IPs that exceed the configured budget
// with 429 and a Retry-After header.
func RateLimit(limiter *services.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := limiter.Allow(c.ClientIP()); err != nil {
			var rateErr *services.RateLimitError
			if errors.As(err, &rateErr) {
				seconds := int(time.Until(rateErr.RetryAfter).Seconds())
				if seconds < 1 {
					seconds = 1
				}
				c.Header("Retry-After", strconv.Itoa(seconds))
				c.JSON(http.StatusTooManyRequests, gin.H{
					"success": false,
					"message": rateErr.Message,
				})
				c.Abort()
				return
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
