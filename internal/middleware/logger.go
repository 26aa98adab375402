package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"toast/api/internal/models"
)

func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		} else if status >= 400 {
			event = log.Warn()
		}

		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.Last().Error())
		}
		if id := currentUserID(c); id != "" {
			event = event.Str("user_id", id)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", latency).
			Str("request_id", GetRequestID(c)).
			Msg("http request")
	}
}

// currentUserID is empty before Auth has run.
func currentUserID(c *gin.Context) string {
	if user, ok := c.Get(currentUserKey); ok {
		if u, ok := user.(models.User); ok {
			return u.ID
		}
	}
	return ""
}
