package handlers

import (
	"errors"
	"net/http"

	"github.com/creativehub/nexus/internal/auth"
	apierrors "github.com/creativehub/nexus/internal/errors"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// Register creates an account and returns a session token
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Register(req)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		util.RespondWithAPIError(c, apierrors.AlreadyExists("account").WithField("email"))
		return
	case errors.Is(err, auth.ErrUsernameExists):
		util.RespondWithAPIError(c, apierrors.AlreadyExists("username").WithField("username"))
		return
	case errors.Is(err, auth.ErrInvalidUsername):
		util.RespondValidationError(c, "username", err.Error())
		return
	case err != nil:
		logger.ErrorWithFields("Failed to register account", err)
		util.RespondInternalError(c, "failed to create account")
		return
	}

	h.search.IndexProfileAsync(resp.Profile.Profile)
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges credentials for a session token
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		util.RespondUnauthorized(c, "invalid login or password")
		return
	}
	if err != nil {
		logger.ErrorWithFields("Failed to log in", err)
		util.RespondInternalError(c, "failed to log in")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AuthMe returns the session's profile
// GET /api/v1/auth/me
func (h *Handlers) AuthMe(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile.Private()})
}
