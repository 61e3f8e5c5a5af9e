// Package vision defines the provider capability model shared by every
// analysis backend, plus the normalization rules that turn vendor output
// into the canonical result shapes of pkg/models.
package vision

import (
	"fmt"
	"strings"

	"github.com/arbovm/levenshtein"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/pkg/models"
)

// AnalysisType is the logical operation requested by a caller
type AnalysisType string

const (
	General             AnalysisType = "general"
	ObjectDetection     AnalysisType = "object_detection"
	TextExtraction      AnalysisType = "text_extraction"
	FaceDetection       AnalysisType = "face_detection"
	ImageClassification AnalysisType = "image_classification"
	ColorAnalysis       AnalysisType = "color_analysis"
	QualityAssessment   AnalysisType = "quality_assessment"
)

// AllAnalysisTypes lists every supported analysis type in canonical order
var AllAnalysisTypes = []AnalysisType{
	General,
	ObjectDetection,
	TextExtraction,
	FaceDetection,
	ImageClassification,
	ColorAnalysis,
	QualityAssessment,
}

// maxSuggestionDistance bounds how far a typo may be from a known type
// before no suggestion is offered.
const maxSuggestionDistance = 3

// ParseAnalysisType validates s against the known analysis types
func ParseAnalysisType(s string) (AnalysisType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllAnalysisTypes {
		if string(t) == normalized {
			return t, nil
		}
	}

	msg := fmt.Sprintf("Unknown analysis type: %s", s)
	if suggestion, ok := closestAnalysisType(normalized); ok {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	return "", apperrors.NewValidationError(msg, nil)
}

func closestAnalysisType(s string) (AnalysisType, bool) {
	if s == "" {
		return "", false
	}
	best := AnalysisType("")
	bestDistance := maxSuggestionDistance + 1
	for _, t := range AllAnalysisTypes {
		if d := levenshtein.Distance(s, string(t)); d < bestDistance {
			best, bestDistance = t, d
		}
	}
	return best, best != ""
}

// Image is the immutable per-call input handed to a provider. Bytes is nil
// on the mock path.
type Image struct {
	Bytes    []byte
	Metadata models.ImageMetadata
}

// Provider tags used in canonical results
const (
	ProviderMock      = "mock"
	ProviderAzure     = "azure_computer_vision"
	ProviderAzureFace = "azure_face_api"
	ProviderAWS       = "aws_rekognition"
	ProviderGoogle    = "google_cloud_vision"
)
