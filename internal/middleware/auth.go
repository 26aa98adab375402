package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"toast/api/internal/models"
	"toast/api/internal/service"
)

const (
	currentUserKey    = "current_user"
	currentSessionKey = "current_session"
)

type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (service.Principal, error)
}

// Auth resolves the bearer session token and stores the caller on the
// context. Failed lookups abort with the guard's error.
func Auth(guard Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := guard.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(currentUserKey, principal.User)
		c.Set(currentSessionKey, principal.Session)

		c.Next()
	}
}

// CurrentUser is only valid behind Auth.
func CurrentUser(c *gin.Context) models.User {
	user, _ := c.MustGet(currentUserKey).(models.User)
	return user
}

func CurrentSession(c *gin.Context) models.Session {
	session, _ := c.MustGet(currentSessionKey).(models.Session)
	return session
}
