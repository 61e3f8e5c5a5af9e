package vision

import (
	"context"

	"go-vision-analyzer/pkg/models"
)

// Provider is implemented by every analysis backend. A backend declares the
// operations it supports by additionally implementing the capability
// interfaces below; the router treats a missing capability as an
// unsupported operation.
type Provider interface {
	// Name is the backend identifier reported on errors
	Name() string
}

// GeneralAnalyzer implements the "general" analysis type
type GeneralAnalyzer interface {
	AnalyzeGeneral(ctx context.Context, img Image, opts Options) (*models.GeneralResult, error)
}

// ObjectDetector implements the "object_detection" analysis type
type ObjectDetector interface {
	DetectObjects(ctx context.Context, img Image, opts Options) (*models.ObjectDetectionResult, error)
}

// TextExtractor implements the "text_extraction" analysis type
type TextExtractor interface {
	ExtractText(ctx context.Context, img Image, opts Options) (*models.TextExtractionResult, error)
}

// FaceDetector implements the "face_detection" analysis type
type FaceDetector interface {
	DetectFaces(ctx context.Context, img Image, opts Options) (*models.FaceDetectionResult, error)
}

// ImageClassifier implements the "image_classification" analysis type
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, img Image, opts Options) (*models.ClassificationResult, error)
}

// ColorAnalyzer implements the "color_analysis" analysis type
type ColorAnalyzer interface {
	AnalyzeColors(ctx context.Context, img Image, opts Options) (*models.ColorAnalysisResult, error)
}

// QualityAssessor implements the "quality_assessment" analysis type
type QualityAssessor interface {
	AssessQuality(ctx context.Context, img Image, opts Options) (*models.QualityAssessmentResult, error)
}

// Supports reports whether p implements the capability behind t
func Supports(p Provider, t AnalysisType) bool {
	switch t {
	case General:
		_, ok := p.(GeneralAnalyzer)
		return ok
	case ObjectDetection:
		_, ok := p.(ObjectDetector)
		return ok
	case TextExtraction:
		_, ok := p.(TextExtractor)
		return ok
	case FaceDetection:
		_, ok := p.(FaceDetector)
		return ok
	case ImageClassification:
		_, ok := p.(ImageClassifier)
		return ok
	case ColorAnalysis:
		_, ok := p.(ColorAnalyzer)
		return ok
	case QualityAssessment:
		_, ok := p.(QualityAssessor)
		return ok
	}
	return false
}
