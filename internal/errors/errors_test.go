package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "input error keeps message verbatim",
			err:      NewInputError("Either image_path or image_data must be provided"),
			expected: "Either image_path or image_data must be provided",
		},
		{
			name:     "cause is appended",
			err:      NewDecodeError("Failed to decode base64 image data", fmt.Errorf("illegal base64 data at input byte 4")),
			expected: "Failed to decode base64 image data: illegal base64 data at input byte 4",
		},
		{
			name:     "foreign error",
			err:      fmt.Errorf("boom"),
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("router: %w", NewUnsupportedOperationError("aws_rekognition", "color_analysis"))

	assert.True(t, IsType(err, ErrorTypeUnsupportedOperation))
	assert.False(t, IsType(err, ErrorTypeVendor))
	assert.Equal(t, ErrorTypeUnsupportedOperation, TypeOf(err))
	assert.Equal(t, http.StatusNotImplemented, GetStatusCode(err))
}

func TestNewVendorError(t *testing.T) {
	err := NewVendorError("azure_computer_vision", http.StatusUnauthorized, "Vision AI provider error", nil)

	assert.Equal(t, "azure_computer_vision", err.Provider)
	assert.Equal(t, http.StatusUnauthorized, err.VendorStatus)
	assert.Contains(t, err.Details, "401")
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}

func TestTypeOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnexpected, TypeOf(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(context.Canceled))
}

func TestFromContext(t *testing.T) {
	assert.True(t, IsType(FromContext(context.Canceled, "canceled"), ErrorTypeCanceled))
	assert.True(t, IsType(FromContext(fmt.Errorf("post: %w", context.DeadlineExceeded), "slow"), ErrorTypeTimeout))
	assert.Nil(t, FromContext(fmt.Errorf("boom"), "x"))
}

func TestStatusCodeForMatchesConstructors(t *testing.T) {
	for _, err := range []*AppError{
		NewInputError("x"),
		NewDecodeError("x", nil),
		NewNotFoundError("x", nil),
		NewConfigError("x", nil),
		NewValidationError("x", nil),
		NewUnsupportedSourceError("x"),
		NewUnsupportedOperationError("mock", "general"),
		NewVendorError("mock", 500, "x", nil),
		NewOperationTimeoutError("x"),
		NewTimeoutError("x", nil),
		NewCanceledError("x", nil),
		NewUnexpectedError("x", nil),
	} {
		assert.Equal(t, err.StatusCode, StatusCodeFor(err.Type), err.Type)
	}
}
