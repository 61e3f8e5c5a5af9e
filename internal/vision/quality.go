package vision

import (
	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

// AssessQuality builds a quality result from metadata plus whatever signals
// the vendor reported. Provider and note are left to the caller.
func AssessQuality(meta models.ImageMetadata, signals validation.QualitySignals, v *validation.QualityValidator) *models.QualityAssessmentResult {
	issues := v.Validate(meta, signals)
	recs := v.Recommendations(issues)
	if len(recs) == 0 {
		recs = []string{"Image quality is good"}
	}

	return &models.QualityAssessmentResult{
		Resolution:            Resolution(meta),
		Megapixels:            Megapixels(meta),
		Format:                meta.Format,
		ColorMode:             meta.ColorMode,
		SizeKB:                SizeKB(meta),
		IsLowResolution:       v.IsLowResolution(meta),
		IsClipArt:             signals.IsClipArt,
		IsLineDrawing:         signals.IsLineDrawing,
		Issues:                issues,
		Recommendations:       recs,
		IsSuitableForAnalysis: !v.HasCriticalIssues(issues),
	}
}
