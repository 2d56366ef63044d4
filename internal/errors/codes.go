// Package errors defines the error body every API endpoint returns and the
// codes clients switch on.
package errors

import "net/http"

// ErrorCode is the machine-readable part of an error body
type ErrorCode string

const (
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrForbidden         ErrorCode = "FORBIDDEN"
	ErrConflict          ErrorCode = "CONFLICT"
	ErrValidation        ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest        ErrorCode = "BAD_REQUEST"
	ErrInternalError     ErrorCode = "INTERNAL_ERROR"
	ErrAlreadyExists     ErrorCode = "ALREADY_EXISTS"
	ErrRateLimited       ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail    ErrorCode = "SERVICE_UNAVAILABLE"
	ErrTimeout           ErrorCode = "TIMEOUT"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrPayloadTooLarge   ErrorCode = "PAYLOAD_TOO_LARGE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:          http.StatusNotFound,
	ErrUnauthorized:      http.StatusUnauthorized,
	ErrForbidden:         http.StatusForbidden,
	ErrConflict:          http.StatusConflict,
	ErrValidation:        http.StatusUnprocessableEntity,
	ErrBadRequest:        http.StatusBadRequest,
	ErrInternalError:     http.StatusInternalServerError,
	ErrAlreadyExists:     http.StatusConflict,
	ErrRateLimited:       http.StatusTooManyRequests,
	ErrServiceUnavail:    http.StatusServiceUnavailable,
	ErrTimeout:           http.StatusGatewayTimeout,
	ErrInvalidTransition: http.StatusConflict,
	ErrPayloadTooLarge:   http.StatusRequestEntityTooLarge,
}

// codeForStatus picks the generic code when several codes share a status
var codeForStatus = map[int]ErrorCode{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusConflict:              ErrConflict,
	http.StatusRequestEntityTooLarge: ErrPayloadTooLarge,
	http.StatusUnprocessableEntity:   ErrValidation,
	http.StatusTooManyRequests:       ErrRateLimited,
	http.StatusServiceUnavailable:    ErrServiceUnavail,
	http.StatusGatewayTimeout:        ErrTimeout,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
