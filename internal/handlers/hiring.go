package handlers

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/creativehub/nexus/internal/errors"
	"github.com/creativehub/nexus/internal/feed"
	"github.com/creativehub/nexus/internal/hiring"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"github.com/creativehub/nexus/internal/util"
	"github.com/gin-gonic/gin"
)

// CreateHireRequest sends a hire request to a freelancer
// POST /api/v1/hire-requests
func (h *Handlers) CreateHireRequest(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	var req hiring.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	hr, err := h.hiring.Create(c.Request.Context(), profile, req)
	if err != nil {
		respondHiringError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hire_request": toHireRequestResponse(hr)})
}

// GetHireRequests lists requests the caller sent or received
// GET /api/v1/hire-requests?role=client|freelancer&status=
func (h *Handlers) GetHireRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	filter := hiring.ListFilter{
		Role:   hiring.Role(strings.ToLower(c.Query("role"))),
		Status: models.HireStatus(strings.ToLower(c.Query("status"))),
	}
	switch filter.Role {
	case "", hiring.RoleClient, hiring.RoleFreelancer:
	default:
		util.RespondBadRequest(c, "role must be client or freelancer")
		return
	}
	switch filter.Status {
	case "", models.HireStatusPending, models.HireStatusAccepted, models.HireStatusDeclined,
		models.HireStatusCancelled, models.HireStatusCompleted:
	default:
		util.RespondBadRequest(c, "unknown status")
		return
	}
	filter.Limit, filter.Offset = util.ParseLimitOffset(c.Query("limit"), c.Query("offset"), feed.DefaultLimit, feed.MaxLimit)

	requests, total, err := h.hiring.List(c.Request.Context(), userID, filter)
	if err != nil {
		logger.ErrorWithFields("Failed to list hire requests", err, logger.WithUserID(userID))
		util.RespondInternalError(c, "failed to load hire requests")
		return
	}
	out := make([]HireRequestResponse, len(requests))
	for i := range requests {
		out[i] = toHireRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, gin.H{"hire_requests": out, "meta": pageMeta(total, filter.Limit, filter.Offset, len(out))})
}

// GetHireRequest returns one request the caller is part of
// GET /api/v1/hire-requests/:id
func (h *Handlers) GetHireRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	hr, err := h.hiring.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondHiringError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hire_request": toHireRequestResponse(hr)})
}

// TransitionHireRequest accepts, declines, completes or cancels a request
// POST /api/v1/hire-requests/:id/:action
func (h *Handlers) TransitionHireRequest(c *gin.Context) {
	profile, ok := util.GetProfileFromContext(c)
	if !ok {
		return
	}
	action, err := hiring.ParseAction(c.Param("action"))
	if err != nil {
		util.RespondNotFound(c, "action")
		return
	}

	hr, err := h.hiring.Transition(c.Request.Context(), profile, c.Param("id"), action)
	if err != nil {
		respondHiringError(c, err, &transitionContext{current: hr, action: action})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hire_request": toHireRequestResponse(hr)})
}

type transitionContext struct {
	current *models.HireRequest
	action  hiring.Action
}

func respondHiringError(c *gin.Context, err error, tc *transitionContext) {
	var fe *hiring.FieldError
	switch {
	case errors.As(err, &fe):
		util.RespondValidationError(c, fe.Field, fe.Message)
	case errors.Is(err, hiring.ErrNotFound):
		util.RespondNotFound(c, "hire request")
	case errors.Is(err, hiring.ErrFreelancerNotFound):
		util.RespondNotFound(c, "freelancer")
	case errors.Is(err, hiring.ErrSelfHire):
		util.RespondValidationError(c, "freelancer_username", err.Error())
	case errors.Is(err, hiring.ErrUnavailable):
		util.RespondWithAPIError(c, apierrors.Conflict("freelancer availability").WithDetails(err.Error()))
	case errors.Is(err, hiring.ErrForbidden):
		util.RespondForbidden(c, "your role cannot perform this action")
	case errors.Is(err, hiring.ErrInvalidTransition):
		from, to := "", ""
		if tc != nil {
			to = string(hiring.TargetStatus(tc.action))
			if tc.current != nil {
				from = string(tc.current.Status)
			}
		}
		util.RespondWithAPIError(c, apierrors.InvalidTransition("hire request", from, to))
	default:
		logger.ErrorWithFields("Hire request operation failed", err)
		util.RespondInternalError(c, "hire request operation failed")
	}
}
