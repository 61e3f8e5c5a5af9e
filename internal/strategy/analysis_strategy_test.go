package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/mock"
	"go-vision-analyzer/pkg/models"
)

var testImage = vision.Image{Metadata: models.ImageMetadata{Format: "JPEG", ColorMode: "RGB", Width: 1024, Height: 768}}

// textOnly supports a single capability and counts calls
type textOnly struct {
	calls int
	text  string
}

func (p *textOnly) Name() string { return "text-only" }

func (p *textOnly) ExtractText(context.Context, vision.Image, vision.Options) (*models.TextExtractionResult, error) {
	p.calls++
	return &models.TextExtractionResult{FullText: p.text, Blocks: []models.TextBlock{}, Provider: "text-only"}, nil
}

func TestNewRouter_RegistersEveryType(t *testing.T) {
	r := NewRouter()

	for _, at := range vision.AllAnalysisTypes {
		s, ok := r.Strategy(at)
		require.True(t, ok, at)
		assert.Equal(t, string(at), s.GetStrategyName())
	}
}

func TestRoute_MockCoversEveryType(t *testing.T) {
	r := NewRouter()
	p := mock.New()

	for _, at := range vision.AllAnalysisTypes {
		res, err := r.Route(context.Background(), p, at, testImage, vision.Options{})
		require.NoError(t, err, at)
		assert.Equal(t, string(at), res.AnalysisType())
		assert.Equal(t, vision.ProviderMock, res.ProviderName())
	}
}

func TestRoute_UnsupportedCapability(t *testing.T) {
	p := &textOnly{}

	_, err := NewRouter().Route(context.Background(), p, vision.ColorAnalysis, testImage, vision.Options{})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeUnsupportedOperation, appErr.Type)
	assert.Equal(t, "text-only", appErr.Provider)
	assert.Equal(t, "Analysis type 'color_analysis' not supported by text-only", appErr.Message)
	assert.Equal(t, 0, p.calls)
}

func TestRoute_UnknownType(t *testing.T) {
	_, err := NewRouter().Route(context.Background(), &textOnly{}, vision.AnalysisType("ocr"), testImage, vision.Options{})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestRoute_ExpectedTextAddsAccuracy(t *testing.T) {
	p := &textOnly{text: "hello word"}
	r := NewRouter()

	res, err := r.Route(context.Background(), p, vision.TextExtraction, testImage, vision.Options{vision.OptExpectedText: "hello world"})
	require.NoError(t, err)
	text := res.(*models.TextExtractionResult)
	require.NotNil(t, text.Accuracy)
	assert.False(t, text.Accuracy.ExactMatch)
	assert.Equal(t, 0.5, text.Accuracy.WordErrorRate)

	res, err = r.Route(context.Background(), p, vision.TextExtraction, testImage, vision.Options{})
	require.NoError(t, err)
	assert.Nil(t, res.(*models.TextExtractionResult).Accuracy)
}

func TestRoute_CanceledBeforeDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &textOnly{}

	_, err := NewRouter().Route(ctx, p, vision.TextExtraction, testImage, vision.Options{})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCanceled))
	assert.Equal(t, 0, p.calls)
}

func TestRoute_RejectsOutOfRangeCaps(t *testing.T) {
	p := &textOnly{}

	_, err := NewRouter().Route(context.Background(), p, vision.TextExtraction, testImage, vision.Options{vision.OptMaxObjects: 1e19})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, 0, p.calls)
}

func TestRoute_ZeroMaxObjects(t *testing.T) {
	res, err := NewRouter().Route(context.Background(), mock.New(), vision.ObjectDetection, testImage, vision.Options{vision.OptMaxObjects: 0})

	require.NoError(t, err)
	objects := res.(*models.ObjectDetectionResult)
	assert.Empty(t, objects.Objects)
	assert.Equal(t, 0, objects.TotalObjects)
}
