package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"toast/api/internal/ids"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"

	maxRequestIDLen = 64
)

// RequestID keeps a caller supplied X-Request-Id when it is short enough to
// log, otherwise it mints a ksuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = ids.NewRequestID()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
