package middleware

import (
	"strings"

	"github.com/creativehub/nexus/internal/auth"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth validates the bearer token and stores user_id and user on the context
func RequireAuth(authService auth.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "missing bearer token")
			return
		}

		profile, err := authService.ValidateToken(token)
		if err != nil {
			util.RespondUnauthorized(c, "invalid or expired session")
			return
		}

		c.Set("user_id", profile.ID)
		c.Set("user", profile)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(authService auth.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if profile, err := authService.ValidateToken(token); err == nil {
				c.Set("user_id", profile.ID)
				c.Set("user", profile)
			}
		}
		c.Next()
	}
}
