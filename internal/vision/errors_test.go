package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "go-vision-analyzer/internal/errors"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "Client.Timeout exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestCallError(t *testing.T) {
	ctx := context.Background()

	err := CallError(ctx, ProviderAzure, http.StatusTooManyRequests, errors.New("rate limited"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeVendor))
	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.VendorStatus)
	assert.Equal(t, ProviderAzure, appErr.Provider)

	err = CallError(ctx, ProviderAzure, 0, fmt.Errorf("post: %w", context.DeadlineExceeded))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))

	err = CallError(ctx, ProviderAzure, 0, timeoutErr{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = CallError(canceled, ProviderAzure, 0, errors.New("connection reset"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCanceled))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "pupil_left", SnakeCase("pupilLeft"))
	assert.Equal(t, "left_eye", SnakeCase("LEFT_EYE"))
	assert.Equal(t, "facial_hair", SnakeCase("facialHair"))
	assert.Equal(t, "mouth", SnakeCase("mouth"))
}
