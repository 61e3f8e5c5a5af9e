package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpansWithNoopProvider(t *testing.T) {
	ctx, span := StartAnalysisSpan(context.Background(), "req-1", "general")
	assert.NotNil(t, ctx)

	_, vendor := StartVendorSpan(ctx, "aws_rekognition", "detect_labels")
	End(vendor, errors.New("boom"))
	End(span, nil)

	assert.False(t, span.IsRecording())
}
