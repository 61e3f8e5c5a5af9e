// Package mock implements a deterministic provider that never performs I/O.
// It backs the default mode when no vision vendor is configured.
package mock

import (
	"context"

	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

// Note is attached to every synthetic result
const Note = "synthetic result: no vision service was called. Configure a provider for real analysis."

// Provider returns fixed, self-consistent results for every analysis type
type Provider struct {
	quality *validation.QualityValidator
}

// New creates the mock provider
func New() *Provider {
	return &Provider{quality: validation.NewQualityValidator()}
}

// Name implements vision.Provider
func (p *Provider) Name() string { return vision.ProviderMock }

// AnalyzeGeneral derives everything from the request metadata
func (p *Provider) AnalyzeGeneral(_ context.Context, img vision.Image, _ vision.Options) (*models.GeneralResult, error) {
	res := vision.GeneralFromMetadata(img.Metadata)
	res.Description = "a sample image"
	res.Tags = []string{"sample", "outdoor"}
	res.Provider = vision.ProviderMock
	res.Note = Note
	return res, nil
}

// DetectObjects runs the fixed detections through the shared object normalizer
func (p *Provider) DetectObjects(_ context.Context, _ vision.Image, opts vision.Options) (*models.ObjectDetectionResult, error) {
	objects := []models.DetectedObject{
		{
			Label:       "person",
			Confidence:  0.95,
			BoundingBox: models.BoundingBox{X: 100, Y: 150, Width: 200, Height: 400, Unit: models.UnitPixel},
		},
		{
			Label:       "car",
			Confidence:  0.88,
			BoundingBox: models.BoundingBox{X: 400, Y: 300, Width: 300, Height: 200, Unit: models.UnitPixel},
		},
	}

	res := vision.NormalizeObjects(objects, opts)
	res.Model = "mock-detector-v1"
	res.Provider = vision.ProviderMock
	res.Note = Note
	return res, nil
}

// ExtractText returns a single fixed line
func (p *Provider) ExtractText(_ context.Context, _ vision.Image, opts vision.Options) (*models.TextExtractionResult, error) {
	blocks := []models.TextBlock{
		{
			Text:        "Sample extracted text from image",
			Confidence:  0.92,
			BoundingBox: models.BoundingBox{X: 50, Y: 100, Width: 300, Height: 50, Unit: models.UnitPixel},
		},
	}
	return &models.TextExtractionResult{
		Blocks:      blocks,
		FullText:    blocks[0].Text,
		TotalBlocks: len(blocks),
		Language:    opts.Language(),
		Provider:    vision.ProviderMock,
		Note:        Note,
	}, nil
}

// DetectFaces returns one face; landmarks honor return_landmarks
func (p *Provider) DetectFaces(_ context.Context, _ vision.Image, opts vision.Options) (*models.FaceDetectionResult, error) {
	face := models.Face{
		BoundingBox: models.BoundingBox{X: 200, Y: 150, Width: 150, Height: 200, Unit: models.UnitPixel},
		Confidence:  vision.FloatPtr(0.97),
		Attributes: map[string]interface{}{
			"age_range": "25-35",
			"gender":    "unknown",
			"emotion":   "neutral",
		},
	}
	if opts.ReturnLandmarks() {
		face.Landmarks = []models.Landmark{
			{Type: "left_eye", X: 230, Y: 200},
			{Type: "right_eye", X: 320, Y: 200},
			{Type: "nose", X: 275, Y: 250},
			{Type: "mouth", X: 275, Y: 300},
		}
	}

	return &models.FaceDetectionResult{
		Faces:      []models.Face{face},
		TotalFaces: 1,
		Model:      "mock-face-detector-v1",
		Provider:   vision.ProviderMock,
		Note:       Note,
	}, nil
}

// ClassifyImage returns three fixed labels capped at max_results
func (p *Provider) ClassifyImage(_ context.Context, _ vision.Image, opts vision.Options) (*models.ClassificationResult, error) {
	labels := []models.Label{
		{Name: "landscape", Confidence: 0.85},
		{Name: "outdoor", Confidence: 0.78},
		{Name: "nature", Confidence: 0.72},
	}
	vision.SortLabels(labels)
	labels = vision.Truncate(labels, opts.MaxResults())

	return &models.ClassificationResult{
		Labels:          labels,
		PrimaryLabel:    vision.PrimaryName(labels),
		PrimaryCategory: vision.PrimaryName(labels),
		Model:           "mock-classifier-v1",
		Provider:        vision.ProviderMock,
		Note:            Note,
	}, nil
}

// AnalyzeColors returns a fixed palette
func (p *Provider) AnalyzeColors(_ context.Context, _ vision.Image, _ vision.Options) (*models.ColorAnalysisResult, error) {
	return &models.ColorAnalysisResult{
		DominantColors: []models.ColorSwatch{
			{Name: "blue", Hex: "#3A5F8B", Percentage: vision.FloatPtr(35.2)},
			{Name: "green", Hex: "#8BC34A", Percentage: vision.FloatPtr(28.5)},
			{Name: "white", Hex: "#FFFFFF", Percentage: vision.FloatPtr(20.1)},
		},
		DominantForeground: "blue",
		DominantBackground: "white",
		AccentColor:        "#3A5F8B",
		IsBlackAndWhite:    vision.BoolPtr(false),
		Palette:            []string{"#3A5F8B", "#8BC34A", "#FFFFFF", "#FF5722", "#9E9E9E"},
		AverageBrightness:  vision.FloatPtr(0.65),
		Provider:           vision.ProviderMock,
		Note:               Note,
	}, nil
}

// AssessQuality combines metadata checks with fixed signal scores
func (p *Provider) AssessQuality(_ context.Context, img vision.Image, _ vision.Options) (*models.QualityAssessmentResult, error) {
	signals := validation.QualitySignals{IsClipArt: vision.BoolPtr(false), IsLineDrawing: vision.BoolPtr(false)}

	res := vision.AssessQuality(img.Metadata, signals, p.quality)
	res.OverallScore = vision.FloatPtr(0.82)
	res.Signals = map[string]float64{
		"sharpness":   0.85,
		"brightness":  0.75,
		"contrast":    0.80,
		"noise_level": 0.15,
	}
	res.Provider = vision.ProviderMock
	res.Note = Note
	return res, nil
}
