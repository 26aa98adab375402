package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"toast/api/internal/apierr"
)

// Recovery renders a handler panic as a 500 with the usual message body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			event := log.Error().
				Interface("panic", r).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", GetRequestID(c))
			if id := currentUserID(c); id != "" {
				event = event.Str("user_id", id)
			}
			event.Msg("panic recovered")

			AbortWithError(c, apierr.Internal("Internal server error.", fmt.Errorf("panic: %v", r)))
		}()
		c.Next()
	}
}
