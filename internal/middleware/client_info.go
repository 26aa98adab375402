package middleware

import (
	"github.com/gin-gonic/gin"

	"toast/api/internal/security"
)

const clientInfoKey = "client_info"

func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientInfoKey, security.ClientInfoFromRequest(c.Request, c.ClientIP()))
		c.Next()
	}
}

func GetClientInfo(c *gin.Context) security.ClientInfo {
	if v, ok := c.Get(clientInfoKey); ok {
		if info, ok := v.(security.ClientInfo); ok {
			return info
		}
	}
	return security.ClientInfoFromRequest(c.Request, c.ClientIP())
}
