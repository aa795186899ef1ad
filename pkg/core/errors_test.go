package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Type:    ErrInvalidRequest,
		Message: "session is already active",
	}

	expected := "invalid_request_error: session is already active"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestError_WithCode(t *testing.T) {
	err := &Error{
		Type:    ErrTool,
		Message: "stock_quote: backend timeout",
		Code:    "tool_execution_failed",
	}

	expected := "tool_error: stock_quote: backend timeout (code: tool_execution_failed)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequestError(t *testing.T) {
	err := NewInvalidRequestError("bad request")
	if err.Type != ErrInvalidRequest {
		t.Errorf("Type = %v, want %v", err.Type, ErrInvalidRequest)
	}
	if err.Message != "bad request" {
		t.Errorf("Message = %q, want %q", err.Message, "bad request")
	}
}

func TestNewAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("invalid API key")
	if err.Type != ErrAuthentication {
		t.Errorf("Type = %v, want %v", err.Type, ErrAuthentication)
	}
}

func TestNewConnectionError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := NewConnectionError("websocket dial failed", underlying)

	if err.Type != ErrConnection {
		t.Errorf("Type = %v, want %v", err.Type, ErrConnection)
	}
	if !errors.Is(err, underlying) {
		t.Error("wrapped error should match with errors.Is")
	}
}

func TestNewToolError(t *testing.T) {
	underlying := fmt.Errorf("backend returned invalid JSON")
	err := NewToolError("stock_quote", underlying)

	if err.Type != ErrTool {
		t.Errorf("Type = %v, want %v", err.Type, ErrTool)
	}
	if err.Code != "tool_execution_failed" {
		t.Errorf("Code = %q, want %q", err.Code, "tool_execution_failed")
	}
	if errors.Unwrap(err) != underlying {
		t.Error("Unwrap() should return the underlying error")
	}
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError("upstream error")
	if err.Type != ErrAPI {
		t.Errorf("Type = %v, want %v", err.Type, ErrAPI)
	}
	if errors.Unwrap(err) != nil {
		t.Error("API error without a cause should unwrap to nil")
	}
}
