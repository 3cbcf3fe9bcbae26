package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/pkg/ratelimit"
)

func rateLimitedRouter(limiter *ratelimit.Limiter, max int) *gin.Engine {
	router := gin.New()
	router.POST("/leads", RateLimit(limiter, max, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func postFrom(router http.Handler, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/leads", nil)
	req.Header.Set("X-Forwarded-For", ip)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterMax(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))
	router := rateLimitedRouter(limiter, 2)

	assert.Equal(t, http.StatusOK, postFrom(router, "1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, postFrom(router, "1.1.1.1").Code)

	w := postFrom(router, "1.1.1.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]int `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Error.Code)
	assert.Equal(t, 60, body.Error.Details["retryAfter"])

	// other clients are unaffected
	assert.Equal(t, http.StatusOK, postFrom(router, "2.2.2.2").Code)
}

func TestRateLimit_ResetsAfterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))
	router := rateLimitedRouter(limiter, 1)

	assert.Equal(t, http.StatusOK, postFrom(router, "1.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(router, "1.1.1.1").Code)

	now = now.Add(time.Minute + time.Millisecond)
	assert.Equal(t, http.StatusOK, postFrom(router, "1.1.1.1").Code)
}
