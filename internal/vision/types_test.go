package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/pkg/models"
)

func TestParseAnalysisType(t *testing.T) {
	for _, want := range AllAnalysisTypes {
		got, err := ParseAnalysisType(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := ParseAnalysisType("  Object_Detection ")
	require.NoError(t, err)
	assert.Equal(t, ObjectDetection, got)
}

func TestParseAnalysisType_Unknown(t *testing.T) {
	_, err := ParseAnalysisType("unsupported_type")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "unsupported_type")
}

func TestParseAnalysisType_Suggestion(t *testing.T) {
	_, err := ParseAnalysisType("face_detecton")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "face_detection"?`)
}

type generalOnly struct{}

func (generalOnly) Name() string { return "general-only" }

func (generalOnly) AnalyzeGeneral(context.Context, Image, Options) (*models.GeneralResult, error) {
	return &models.GeneralResult{}, nil
}

func TestSupports(t *testing.T) {
	p := generalOnly{}

	assert.True(t, Supports(p, General))
	assert.False(t, Supports(p, ObjectDetection))
	assert.False(t, Supports(p, AnalysisType("bogus")))
}
