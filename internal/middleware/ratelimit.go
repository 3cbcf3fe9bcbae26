package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio/internal/pkg/clientip"
	"portfolio/internal/pkg/ratelimit"
	"portfolio/internal/pkg/response"
)

// RateLimit rejects a client with 429 once it exceeds max requests per window.
// The client is identified by clientip.FromRequest.
func RateLimit(limiter *ratelimit.Limiter, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := clientip.FromRequest(c.Request)

		if limiter.Check(id, max, window) {
			retryAfter := limiter.ResetTimeSeconds(id)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			log.Warn().
				Str("client", id).
				Str("path", c.Request.URL.Path).
				Int("retry_after", retryAfter).
				Msg("rate limit exceeded")

			response.ErrorWithDetails(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS",
				"Too many requests, please try again later.",
				gin.H{"retryAfter": retryAfter})
			c.Abort()
			return
		}

		c.Next()
	}
}
