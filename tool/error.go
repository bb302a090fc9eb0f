package tool

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ErrorCodeUnknownTool is returned when a category name is not registered.
	ErrorCodeUnknownTool = "UNKNOWN_TOOL"
	// ErrorCodeUnmetRequirement is returned when the requirement policy rejects a category.
	ErrorCodeUnmetRequirement = "UNMET_REQUIREMENT"
	// ErrorCodeInvalidParams is returned when execution parameters fail validation.
	ErrorCodeInvalidParams = "INVALID_PARAMS"
	// ErrorCodeExecutionUnsupported is returned when no executor serves the category.
	ErrorCodeExecutionUnsupported = "EXECUTION_UNSUPPORTED"
	// ErrorCodeExecutionFailed is the generic fallback for executor failures.
	ErrorCodeExecutionFailed = "EXECUTION_FAILED"
	// ErrorCodeTimeout is returned when execution exceeds its deadline.
	ErrorCodeTimeout = "TIMEOUT"
)

// Error is a structured registry error that carries a machine-readable code
// across the CLI, HTTP API, and observers without losing the cause chain.
type Error struct {
	Code      string         `json:"code"`
	Tool      string         `json:"tool,omitempty"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return ErrorCodeExecutionFailed
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(code, toolName, message string, retryable bool, cause error) *Error {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = ErrorCodeExecutionFailed
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &Error{
		Code:      cleanCode,
		Tool:      strings.TrimSpace(toolName),
		Message:   cleanMsg,
		Retryable: retryable,
		Cause:     cause,
	}
}

// NewUnknownToolError builds the lookup-miss error used by Validate and
// Execute. Plain Get lookups never error; absence there is a bool.
func NewUnknownToolError(toolName string) *Error {
	return newError(ErrorCodeUnknownTool, toolName, fmt.Sprintf("tool %q is not registered", toolName), false, nil)
}

// NewUnmetRequirementError wraps a requirement-policy rejection.
func NewUnmetRequirementError(toolName string, cause error) *Error {
	return newError(ErrorCodeUnmetRequirement, toolName, fmt.Sprintf("tool %q requirements not met", toolName), false, cause)
}

// NewExecutionUnsupportedError reports that no executor serves the category.
func NewExecutionUnsupportedError(toolName string) *Error {
	return newError(ErrorCodeExecutionUnsupported, toolName, fmt.Sprintf("no executor registered for tool %q", toolName), false, nil)
}

// NewExecutionFailedError wraps an executor failure.
func NewExecutionFailedError(toolName string, cause error) *Error {
	return newError(ErrorCodeExecutionFailed, toolName, "", true, cause)
}

// ErrorFrom extracts a structured *Error from an error chain.
func ErrorFrom(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *Error
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

// ErrorCode returns the structured code for err, or the fallback when err
// carries none.
func ErrorCode(err error, fallback string) string {
	if toolErr, ok := ErrorFrom(err); ok && toolErr != nil && strings.TrimSpace(toolErr.Code) != "" {
		return toolErr.Code
	}
	if strings.TrimSpace(fallback) == "" {
		return ErrorCodeExecutionFailed
	}
	return fallback
}
