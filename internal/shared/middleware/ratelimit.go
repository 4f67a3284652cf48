package middleware

import (
	"book-catalog/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimit admits rps requests per second across the whole server with the
// given burst. rps <= 0 disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.Warn().
				Str("request_id", c.GetString("request_id")).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")
			response.TooManyRequests(c, "Request rate limit exceeded, retry later")
			return
		}
		c.Next()
	}
}
