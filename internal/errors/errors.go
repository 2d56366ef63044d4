package errors

import (
	stderrors "errors"
	"fmt"
)

// APIError is the JSON error body. Status is the HTTP status it is sent with.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an error sent with the status registered for code
func New(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

// FromStatus builds an error for middleware that only knows the status it wants
func FromStatus(status int, message string) *APIError {
	code, ok := codeForStatus[status]
	if !ok {
		code = ErrInternalError
	}
	return &APIError{Code: code, Message: message, Status: status}
}

// As extracts an APIError from an error chain
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NotFound(resource string) *APIError {
	return New(ErrNotFound, resource+" not found")
}

func Unauthorized(message string) *APIError {
	return New(ErrUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return New(ErrForbidden, message)
}

func Conflict(resource string) *APIError {
	return New(ErrConflict, resource+" already exists or is in an invalid state")
}

func AlreadyExists(resource string) *APIError {
	return New(ErrAlreadyExists, resource+" already exists")
}

// ValidationError reports a bad value in one request field
func ValidationError(field, message string) *APIError {
	return New(ErrValidation, message).WithField(field)
}

func BadRequest(message string) *APIError {
	return New(ErrBadRequest, message)
}

func InternalError(message string) *APIError {
	return New(ErrInternalError, message)
}

func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return New(ErrRateLimited, message)
}

// ServiceUnavailable is returned when an optional integration is not configured or is down
func ServiceUnavailable(service string) *APIError {
	return New(ErrServiceUnavail, service+" is temporarily unavailable")
}

func Timeout(operation string) *APIError {
	return New(ErrTimeout, operation+" timed out")
}

// InvalidTransition rejects a state change the workflow does not allow
func InvalidTransition(resource, from, to string) *APIError {
	return New(ErrInvalidTransition, fmt.Sprintf("cannot move %s from %s to %s", resource, from, to))
}

// PayloadTooLarge rejects an upload over limitMB megabytes
func PayloadTooLarge(field string, limitMB int64) *APIError {
	return New(ErrPayloadTooLarge, fmt.Sprintf("file exceeds the %d MB limit", limitMB)).WithField(field)
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithField names the request field an error refers to
func (e *APIError) WithField(field string) *APIError {
	e.Field = field
	return e
}
