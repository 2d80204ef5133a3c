package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/pkg/httputil"
)

// Recovery turns a handler panic into a logged 500. Panics caused by the
// client hanging up are logged without a response, and http.ErrAbortHandler
// is passed on to net/http.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger := zerolog.Ctx(c.Request.Context())
			if err, ok := rec.(error); ok && connectionLost(err) {
				logger.Warn().Err(err).
					Str("path", c.Request.URL.Path).
					Msg("Client connection lost")
				c.Abort()
				return
			}

			logger.Error().
				Interface("error", rec).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.NewErrorResponse("internal server error"))
		}()
		c.Next()
	}
}

func connectionLost(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
