package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInput                ErrorType = "input"
	ErrorTypeDecode               ErrorType = "decode"
	ErrorTypeNotFound             ErrorType = "not_found"
	ErrorTypeConfig               ErrorType = "config"
	ErrorTypeValidation           ErrorType = "validation"
	ErrorTypeUnsupportedSource    ErrorType = "unsupported_source"
	ErrorTypeUnsupportedOperation ErrorType = "unsupported_operation"
	ErrorTypeVendor               ErrorType = "vendor"
	ErrorTypeOperationTimeout     ErrorType = "operation_timeout"
	ErrorTypeTimeout              ErrorType = "timeout"
	ErrorTypeCanceled             ErrorType = "canceled"
	ErrorTypeUnexpected           ErrorType = "unexpected"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Provider   string    `json:"provider,omitempty"`
	// VendorStatus is the HTTP status returned by a vision vendor, 0 when none was received.
	VendorStatus int   `json:"vendor_status,omitempty"`
	Cause        error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewInputError reports a bad or missing image source
func NewInputError(message string) *AppError {
	return newError(ErrorTypeInput, http.StatusBadRequest, message, nil)
}

// NewDecodeError reports inline image data that is not a decodable image
func NewDecodeError(message string, cause error) *AppError {
	return newError(ErrorTypeDecode, http.StatusBadRequest, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewConfigError reports missing or invalid provider configuration
func NewConfigError(message string, cause error) *AppError {
	return newError(ErrorTypeConfig, http.StatusBadRequest, message, cause)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewUnsupportedSourceError reports an image source the selected mode cannot consume
func NewUnsupportedSourceError(message string) *AppError {
	return newError(ErrorTypeUnsupportedSource, http.StatusBadRequest, message, nil)
}

// NewUnsupportedOperationError reports an analysis type a provider does not implement
func NewUnsupportedOperationError(provider, analysisType string) *AppError {
	e := newError(ErrorTypeUnsupportedOperation, http.StatusNotImplemented,
		fmt.Sprintf("Analysis type '%s' not supported by %s", analysisType, provider), nil)
	e.Provider = provider
	return e
}

// NewVendorError wraps a failed vendor call. status is the vendor HTTP status or 0.
func NewVendorError(provider string, status int, message string, cause error) *AppError {
	e := newError(ErrorTypeVendor, http.StatusBadGateway, message, cause)
	e.Provider = provider
	e.VendorStatus = status
	if status > 0 {
		e.Details = fmt.Sprintf("%s returned HTTP %d", provider, status)
	}
	return e
}

// NewOperationTimeoutError reports a long-running operation that exhausted its poll budget
func NewOperationTimeoutError(message string) *AppError {
	return newError(ErrorTypeOperationTimeout, http.StatusGatewayTimeout, message, nil)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewCanceledError reports a call abandoned because its context was canceled
func NewCanceledError(message string, cause error) *AppError {
	return newError(ErrorTypeCanceled, 499, message, cause)
}

// NewUnexpectedError is the catch-all used at the facade boundary
func NewUnexpectedError(message string, cause error) *AppError {
	return newError(ErrorTypeUnexpected, http.StatusInternalServerError, message, cause)
}

// WithProvider tags the error with the backend that produced it
func (e *AppError) WithProvider(provider string) *AppError {
	e.Provider = provider
	return e
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the error category, ErrorTypeUnexpected for foreign errors
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnexpected
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// UserMessage renders the caller-visible message: the AppError message
// followed by its cause, or the raw error text for foreign errors.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Cause != nil {
		return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
	}
	return appErr.Message
}

// FromContext maps a context error to CanceledError or TimeoutError. It
// returns nil when err is neither.
func FromContext(err error, message string) *AppError {
	switch {
	case errors.Is(err, context.Canceled):
		return NewCanceledError(message, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(message, err)
	}
	return nil
}

// StatusCodeFor maps an error category to the HTTP status its constructor uses
func StatusCodeFor(t ErrorType) int {
	switch t {
	case ErrorTypeInput, ErrorTypeDecode, ErrorTypeConfig, ErrorTypeValidation, ErrorTypeUnsupportedSource:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUnsupportedOperation:
		return http.StatusNotImplemented
	case ErrorTypeVendor:
		return http.StatusBadGateway
	case ErrorTypeOperationTimeout, ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeCanceled:
		return 499
	}
	return http.StatusInternalServerError
}
