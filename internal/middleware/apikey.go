package middleware

import (
	"crypto/subtle"

	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the publishable key clients are configured with
const APIKeyHeader = "apikey"

// RequirePublishableKey rejects requests that don't present the server's
// publishable key, either in the apikey header or the apikey query parameter
// (browsers can't set headers on websocket upgrades).
func RequirePublishableKey(publishableKey string) gin.HandlerFunc {
	expected := []byte(publishableKey)

	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyHeader)
		}

		if key == "" {
			util.RespondUnauthorized(c, "missing publishable key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			util.RespondUnauthorized(c, "invalid publishable key")
			return
		}

		c.Next()
	}
}
