package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// StorageTimeout bounds the request context, and with it every query issued
// for the request.
func StorageTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
