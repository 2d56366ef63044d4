package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeConnection   ErrorType = "connection"
	ErrorTypeDisconnected ErrorType = "disconnected"

	// Authentication errors
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeForbidden ErrorType = "forbidden"

	// Request errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeRateLimit  ErrorType = "rate_limit"

	ErrorTypeServer  ErrorType = "server"
	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	Code       string
	Field      string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// IsRetryable reports whether trying the same request later could succeed
func (e *CLIError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeConnection, ErrorTypeDisconnected,
		ErrorTypeServer, ErrorTypeRateLimit:
		return true
	}
	return false
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// DisconnectedError is returned before any request is attempted when the
// backend URL or publishable key is missing or a placeholder
func DisconnectedError(reason string) *CLIError {
	return NewCLIError(ErrorTypeDisconnected, "Not connected to a backend: "+reason, nil).
		WithSuggestion("Run 'nexus config set-url <url>' and 'nexus config set-key <key>', or set NEXUS_BACKEND_URL and NEXUS_PUBLISHABLE_KEY.")
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	return NewCLIError(ErrorTypeAuth, message, nil).
		WithSuggestion("Log in again with 'nexus auth login'.")
}

// ValidationError creates a validation error for a single field
func ValidationError(field, reason string) *CLIError {
	err := NewCLIError(ErrorTypeValidation, fmt.Sprintf("Validation error: %s - %s", field, reason), nil)
	err.Field = field
	return err
}

// networkSignatures are lower-cased fragments of transport error messages.
// Transport failures have no stable type across platforms, so they are
// recognized by message.
var (
	timeoutSignatures    = []string{"i/o timeout", "deadline exceeded", "timeout"}
	connectionSignatures = []string{"connection refused", "connection reset"}
	networkSignatures    = []string{"no such host", "network is unreachable", "failed to fetch", "eof"}
)

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// IsNetworkError reports whether err looks like a connectivity failure
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		switch cliErr.Type {
		case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeConnection:
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return containsAny(msg, timeoutSignatures) || containsAny(msg, connectionSignatures) || containsAny(msg, networkSignatures)
}

// Classify converts a transport error into a CLIError. CLIErrors pass through.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, timeoutSignatures):
		return NewCLIError(ErrorTypeTimeout, "Request timed out", err).
			WithSuggestion("The server is taking too long to respond. Try again in a moment.")
	case containsAny(msg, connectionSignatures):
		return NewCLIError(ErrorTypeConnection, "Could not connect to the backend", err).
			WithSuggestion("Make sure the backend is running and the URL in 'nexus config show' is correct.")
	case containsAny(msg, networkSignatures):
		return NewCLIError(ErrorTypeNetwork, "Network error", err).
			WithSuggestion("Check your internet connection and try again.")
	default:
		return NewCLIError(ErrorTypeUnknown, err.Error(), err)
	}
}

// apiErrorBody is the backend's error envelope
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Details string `json:"details"`
}

// FromResponse maps a non-2xx backend response to a CLIError
func FromResponse(status int, body []byte) *CLIError {
	var payload apiErrorBody
	_ = jsoniter.Unmarshal(body, &payload)

	message := payload.Message
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", status)
	}

	var err *CLIError
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		err = NewCLIError(ErrorTypeValidation, message, nil)
		if payload.Field != "" {
			err.Message = fmt.Sprintf("%s: %s", payload.Field, message)
		}
	case status == http.StatusUnauthorized:
		err = AuthError(message)
	case status == http.StatusForbidden:
		err = NewCLIError(ErrorTypeForbidden, message, nil).
			WithSuggestion("Only the owner or a participant can do that.")
	case status == http.StatusNotFound:
		err = NewCLIError(ErrorTypeNotFound, message, nil)
	case status == http.StatusConflict:
		err = NewCLIError(ErrorTypeConflict, message, nil)
	case status == http.StatusTooManyRequests:
		err = NewCLIError(ErrorTypeRateLimit, message, nil).
			WithSuggestion("Wait a few seconds before trying again.")
	case status >= http.StatusInternalServerError:
		err = NewCLIError(ErrorTypeServer, message, nil).
			WithSuggestion("The server encountered an error. Try again in a few moments.")
	default:
		err = NewCLIError(ErrorTypeUnknown, message, nil)
	}
	err.StatusCode = status
	err.Code = payload.Code
	err.Field = payload.Field
	return err
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	cliErr := Classify(err)

	var sb strings.Builder
	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.Suggestion != "" {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}
	return sb.String()
}
