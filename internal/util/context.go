package util

import (
	"github.com/creativehub/nexus/internal/models"
	"github.com/gin-gonic/gin"
)

// GetProfileFromContext extracts the authenticated profile from the Gin context.
// If the caller is not authenticated, it responds with 401 Unauthorized.
func GetProfileFromContext(c *gin.Context) (*models.Profile, bool) {
	profile, exists := c.Get("user")
	if !exists {
		RespondUnauthorized(c)
		return nil, false
	}
	profilePtr, ok := profile.(*models.Profile)
	if !ok {
		RespondInternalError(c, "invalid user data in context")
		return nil, false
	}
	return profilePtr, true
}

// GetUserIDFromContext extracts the user ID from the Gin context.
// If the caller is not authenticated, it responds with 401 Unauthorized.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := OptionalUserID(c)
	if !ok {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// OptionalUserID returns the caller's user ID on routes where auth is optional
func OptionalUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		return "", false
	}
	return userIDStr, true
}
