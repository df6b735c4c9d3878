package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotConfigured = "NOT_CONFIGURED_ERROR"
	CodeSecurity      = "SECURITY_REJECTION"
	CodeExternalAPI   = "EXTERNAL_API_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeTimeout       = "TIMEOUT_ERROR"
	CodeUnknown       = "UNKNOWN_ERROR"
)

// AppContextError represents an error with rich context information
type AppContextError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Layer     string                 `json:"layer,omitempty"`     // rest, usecase, gateway
	Component string                 `json:"component,omitempty"` // Specific component name
	Operation string                 `json:"operation,omitempty"` // Specific operation/method name
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppContextError) Error() string {
	var prefix string
	if e.Layer != "" && e.Component != "" && e.Operation != "" {
		prefix = fmt.Sprintf("[%s:%s:%s] ", e.Layer, e.Component, e.Operation)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *AppContextError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps error codes to HTTP status codes
func (e *AppContextError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidation, CodeSecurity:
		return http.StatusBadRequest
	case CodeNotConfigured:
		return http.StatusUnprocessableEntity
	case CodeExternalAPI, CodeParse:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MessageResponse is the only error body clients ever see.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToHTTPResponse strips everything but the client-facing message.
func (e *AppContextError) ToHTTPResponse() MessageResponse {
	return MessageResponse{Message: e.Message}
}

// IsRetryable determines if the error represents a retryable condition
func (e *AppContextError) IsRetryable() bool {
	switch e.Code {
	case CodeTimeout, CodeExternalAPI:
		return true
	default:
		return false
	}
}

// NewAppContextError creates a new AppContextError with full context
func NewAppContextError(
	code, message, layer, component, operation string,
	cause error,
	context map[string]interface{},
) *AppContextError {
	if context == nil {
		context = make(map[string]interface{})
	}

	return &AppContextError{
		Code:      code,
		Message:   message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     cause,
		Context:   context,
	}
}

// EnrichWithContext creates a new AppContextError by enriching an existing error with additional context
func EnrichWithContext(
	err *AppContextError,
	layer, component, operation string,
	additionalContext map[string]interface{},
) *AppContextError {
	mergedContext := make(map[string]interface{})
	for k, v := range err.Context {
		mergedContext[k] = v
	}
	for k, v := range additionalContext {
		mergedContext[k] = v
	}

	return &AppContextError{
		Code:      err.Code,
		Message:   err.Message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     err.Cause,
		Context:   mergedContext,
	}
}

func withType(context map[string]interface{}, errorType string) map[string]interface{} {
	if context == nil {
		context = make(map[string]interface{})
	}
	context["error_type"] = errorType
	return context
}

// NewValidationContextError creates a validation error with context
func NewValidationContextError(message, layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeValidation, message, layer, component, operation, nil, withType(context, "validation"))
}

// NewNotConfiguredContextError marks a menu node that is administratively disabled.
func NewNotConfiguredContextError(message, layer, component, operation string, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeNotConfigured, message, layer, component, operation, nil, withType(context, "not_configured"))
}

// NewSecurityContextError creates an SSRF rejection error with context
func NewSecurityContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeSecurity, message, layer, component, operation, cause, withType(context, "security"))
}

// NewExternalAPIContextError creates an external API error with context
func NewExternalAPIContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeExternalAPI, message, layer, component, operation, cause, withType(context, "external_api"))
}

// NewParseContextError creates an error for upstream bodies that do not decode
func NewParseContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeParse, message, layer, component, operation, cause, withType(context, "parse"))
}

// NewTimeoutContextError creates a timeout error with context
func NewTimeoutContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeTimeout, message, layer, component, operation, cause, withType(context, "timeout"))
}

// NewUnknownContextError creates an unknown error with context
func NewUnknownContextError(message, layer, component, operation string, cause error, context map[string]interface{}) *AppContextError {
	return NewAppContextError(CodeUnknown, message, layer, component, operation, cause, withType(context, "unknown"))
}
