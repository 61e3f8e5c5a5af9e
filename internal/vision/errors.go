package vision

import (
	"context"
	"errors"
	"net"
	"strings"
	"unicode"

	apperrors "go-vision-analyzer/internal/errors"
)

// VendorMessage is the message of every failed vendor call
const VendorMessage = "Vision AI provider error"

// CallError classifies a failed vendor call. Context cancellation and
// deadlines win over transport errors; status is the HTTP status when a
// response was received, 0 otherwise.
func CallError(ctx context.Context, provider string, status int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.FromContext(ctxErr, "Vision AI request did not complete").WithProvider(provider)
	}
	if appErr := apperrors.FromContext(err, "Vision AI request did not complete"); appErr != nil {
		return appErr.WithProvider(provider)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeoutError("Vision AI request timed out", err).WithProvider(provider)
	}
	return apperrors.NewVendorError(provider, status, VendorMessage, err)
}

// SnakeCase converts camelCase or SCREAMING_SNAKE vendor names to snake_case
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
