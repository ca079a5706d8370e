package middleware

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies one process-wide token bucket. A non-positive limit disables it.
func RateLimit(limit float64, burst int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			rateLimitRejects.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				models.NewAPIError(http.StatusTooManyRequests, "Rate limit exceeded", models.ErrRateLimited))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(int(limit)))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}
