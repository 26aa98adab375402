package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"toast/api/internal/security"
)

const corsMethods = "GET, POST, PATCH, DELETE, OPTIONS"

var corsHeaders = strings.Join([]string{
	"Authorization",
	"Content-Type",
	security.PlatformHeader,
	requestIDHeader,
}, ", ")

// originPolicy is empty when any origin is allowed.
type originPolicy map[string]struct{}

func newOriginPolicy(origins []string) originPolicy {
	policy := make(originPolicy, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			policy[origin] = struct{}{}
		}
	}
	return policy
}

func (p originPolicy) allows(origin string) bool {
	if len(p) == 0 {
		return true
	}
	_, ok := p[origin]
	return ok
}

// CORS answers preflight requests from allowed origins and marks their
// regular responses readable, including the request id header.
func CORS(origins []string) gin.HandlerFunc {
	policy := newOriginPolicy(origins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		header := c.Writer.Header()
		header.Add("Vary", "Origin")
		if !policy.allows(origin) {
			c.Next()
			return
		}

		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Expose-Headers", requestIDHeader)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			header.Set("Access-Control-Allow-Headers", corsHeaders)
			header.Set("Access-Control-Allow-Methods", corsMethods)
			header.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
