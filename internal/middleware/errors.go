package middleware

import (
	"github.com/gin-gonic/gin"

	"toast/api/internal/apierr"
)

// AbortWithError renders err as {"message": ...} with its mapped status and
// records it for the request logger.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apierr.Status(apierr.KindOf(err)), gin.H{
		"message": apierr.Message(err),
	})
}
