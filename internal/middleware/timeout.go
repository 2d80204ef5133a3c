package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type TimeoutConfig struct {
	Duration time.Duration
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Duration: 30 * time.Second,
	}
}

// Timeout puts a deadline on the request context so store calls give up
// once it passes. The handler keeps running on the request goroutine; if it
// returns without writing anything after the deadline, the client gets 504.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			zerolog.Ctx(ctx).Warn().
				Dur("timeout", config.Duration).
				Str("path", c.Request.URL.Path).
				Msg("Request deadline exceeded")
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, httputil.NewErrorResponse("request timed out"))
		}
	}
}
