package core

import (
	"fmt"
)

// Error is the error shape shared by the console packages.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Underlying error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrAuthentication ErrorType = "authentication_error"
	ErrConnection     ErrorType = "connection_error"
	ErrAPI            ErrorType = "api_error"
	ErrTool           ErrorType = "tool_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{
		Type:    ErrAuthentication,
		Message: message,
	}
}

// NewConnectionError wraps a transport-level failure.
func NewConnectionError(message string, underlying error) *Error {
	return &Error{
		Type:       ErrConnection,
		Message:    fmt.Sprintf("%s: %v", message, underlying),
		Underlying: underlying,
	}
}

// NewAPIError creates a generic API error.
func NewAPIError(message string) *Error {
	return &Error{
		Type:    ErrAPI,
		Message: message,
	}
}

// NewToolError wraps a tool execution failure.
func NewToolError(tool string, underlying error) *Error {
	return &Error{
		Type:       ErrTool,
		Message:    fmt.Sprintf("%s: %v", tool, underlying),
		Code:       "tool_execution_failed",
		Underlying: underlying,
	}
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Underlying
}
