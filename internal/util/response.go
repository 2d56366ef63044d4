package util

import (
	"net/http"

	apierrors "github.com/creativehub/nexus/internal/errors"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RespondWithAPIError aborts the request with the error as its JSON body.
// Server errors log at error level and client errors at warn.
func RespondWithAPIError(c *gin.Context, apiErr *apierrors.APIError) {
	level := zapcore.WarnLevel
	if apiErr.Status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		logger.WithStatus(apiErr.Status),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}
	if id, ok := c.Get("request_id"); ok {
		fields = append(fields, logger.WithRequestID(id.(string)))
	}
	if userID := c.GetString("user_id"); userID != "" {
		fields = append(fields, logger.WithUserID(userID))
	}
	logger.Log.Log(level, "API error", fields...)

	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

// RespondUnauthorized answers 401; the message defaults to "user not authenticated"
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "user not authenticated"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, apierrors.Unauthorized(msg))
}

func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, apierrors.NotFound(resource))
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, apierrors.BadRequest(message))
}

func RespondForbidden(c *gin.Context, message string) {
	RespondWithAPIError(c, apierrors.Forbidden(message))
}

// RespondInternalError answers 500 with a message safe to show the client.
// The underlying error should already be logged.
func RespondInternalError(c *gin.Context, message string) {
	RespondWithAPIError(c, apierrors.InternalError(message))
}

func RespondConflict(c *gin.Context, resource string) {
	RespondWithAPIError(c, apierrors.Conflict(resource))
}

// RespondValidationError answers 422 naming the offending field
func RespondValidationError(c *gin.Context, field, message string) {
	RespondWithAPIError(c, apierrors.ValidationError(field, message))
}

// RespondServiceUnavailable answers 503 for an optional integration that is not configured
func RespondServiceUnavailable(c *gin.Context, service string) {
	RespondWithAPIError(c, apierrors.ServiceUnavailable(service))
}

// RespondWithData wraps data in {"data": ..., "meta": ...}
func RespondWithData(c *gin.Context, status int, data any, meta ...gin.H) {
	body := gin.H{"data": data}
	if len(meta) > 0 && meta[0] != nil {
		body["meta"] = meta[0]
	}
	c.JSON(status, body)
}
