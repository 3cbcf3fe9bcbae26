package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio/internal/pkg/response"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// ErrorLogger logs every request and recovers from panics. Errors attached to
// the context are logged but never returned to the client.
func ErrorLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				event(logger, c, start, zerolog.ErrorLevel).
					Err(err).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error")
				c.Abort()
				return
			}

			status := c.Writer.Status()
			switch {
			case len(c.Errors) > 0:
				for _, err := range c.Errors {
					event(logger, c, start, zerolog.ErrorLevel).Err(err.Err).Msg("request error")
				}
			case status >= http.StatusInternalServerError:
				event(logger, c, start, zerolog.ErrorLevel).Msg("request failed")
			case status >= http.StatusBadRequest:
				event(logger, c, start, zerolog.WarnLevel).Msg("request rejected")
			default:
				event(logger, c, start, zerolog.InfoLevel).Msg("request")
			}
		}()

		c.Next()
	}
}

func event(logger zerolog.Logger, c *gin.Context, start time.Time, level zerolog.Level) *zerolog.Event {
	return logger.WithLevel(level).
		Int("status", c.Writer.Status()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("client_ip", c.ClientIP()).
		Str("role", c.GetString("role")).
		Str("request_id", c.GetString(requestIDKey)).
		Dur("latency", time.Since(start))
}
