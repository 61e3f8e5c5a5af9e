package strategy

import (
	"context"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/pkg/models"
)

// AnalysisStrategy runs one analysis type against a provider
type AnalysisStrategy interface {
	Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error)
	GetStrategyName() string
}

// GeneralStrategy dispatches to vision.GeneralAnalyzer
type GeneralStrategy struct{}

func (s *GeneralStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	a, ok := p.(vision.GeneralAnalyzer)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := a.AnalyzeGeneral(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GeneralStrategy) GetStrategyName() string { return string(vision.General) }

// ObjectDetectionStrategy dispatches to vision.ObjectDetector
type ObjectDetectionStrategy struct{}

func (s *ObjectDetectionStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	d, ok := p.(vision.ObjectDetector)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := d.DetectObjects(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ObjectDetectionStrategy) GetStrategyName() string { return string(vision.ObjectDetection) }

// TextExtractionStrategy dispatches to vision.TextExtractor and, when the
// caller supplied expected_text, scores the extraction against it.
type TextExtractionStrategy struct{}

func (s *TextExtractionStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	e, ok := p.(vision.TextExtractor)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := e.ExtractText(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	if expected := opts.String(vision.OptExpectedText, ""); expected != "" {
		res.Accuracy = vision.ScoreText(res.FullText, expected)
	}
	return res, nil
}

func (s *TextExtractionStrategy) GetStrategyName() string { return string(vision.TextExtraction) }

// FaceDetectionStrategy dispatches to vision.FaceDetector
type FaceDetectionStrategy struct{}

func (s *FaceDetectionStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	d, ok := p.(vision.FaceDetector)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := d.DetectFaces(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *FaceDetectionStrategy) GetStrategyName() string { return string(vision.FaceDetection) }

// ClassificationStrategy dispatches to vision.ImageClassifier
type ClassificationStrategy struct{}

func (s *ClassificationStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	c, ok := p.(vision.ImageClassifier)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := c.ClassifyImage(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ClassificationStrategy) GetStrategyName() string { return string(vision.ImageClassification) }

// ColorAnalysisStrategy dispatches to vision.ColorAnalyzer
type ColorAnalysisStrategy struct{}

func (s *ColorAnalysisStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	c, ok := p.(vision.ColorAnalyzer)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := c.AnalyzeColors(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ColorAnalysisStrategy) GetStrategyName() string { return string(vision.ColorAnalysis) }

// QualityAssessmentStrategy dispatches to vision.QualityAssessor
type QualityAssessmentStrategy struct{}

func (s *QualityAssessmentStrategy) Analyze(ctx context.Context, p vision.Provider, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	q, ok := p.(vision.QualityAssessor)
	if !ok {
		return nil, unsupported(p, s)
	}
	res, err := q.AssessQuality(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *QualityAssessmentStrategy) GetStrategyName() string { return string(vision.QualityAssessment) }

func unsupported(p vision.Provider, s AnalysisStrategy) error {
	return apperrors.NewUnsupportedOperationError(p.Name(), s.GetStrategyName())
}

// Router holds one strategy per analysis type
type Router struct {
	strategies map[vision.AnalysisType]AnalysisStrategy
}

// NewRouter registers the strategy for every analysis type
func NewRouter() *Router {
	r := &Router{strategies: make(map[vision.AnalysisType]AnalysisStrategy, len(vision.AllAnalysisTypes))}
	for _, s := range []AnalysisStrategy{
		&GeneralStrategy{},
		&ObjectDetectionStrategy{},
		&TextExtractionStrategy{},
		&FaceDetectionStrategy{},
		&ClassificationStrategy{},
		&ColorAnalysisStrategy{},
		&QualityAssessmentStrategy{},
	} {
		r.strategies[vision.AnalysisType(s.GetStrategyName())] = s
	}
	return r
}

// Route runs analysisType against p. The provider result is returned as is.
func (r *Router) Route(ctx context.Context, p vision.Provider, analysisType vision.AnalysisType, img vision.Image, opts vision.Options) (models.AnalysisResult, error) {
	s, ok := r.strategies[analysisType]
	if !ok {
		// re-parse for the suggestion text
		if _, err := vision.ParseAnalysisType(string(analysisType)); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("Unknown analysis type: "+string(analysisType), nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.FromContext(err, "Analysis aborted before dispatch").WithProvider(p.Name())
	}
	return s.Analyze(ctx, p, img, opts)
}

// Strategy returns the registered strategy for analysisType
func (r *Router) Strategy(analysisType vision.AnalysisType) (AnalysisStrategy, bool) {
	s, ok := r.strategies[analysisType]
	return s, ok
}
