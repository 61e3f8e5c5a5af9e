package validation

import (
	"go-vision-analyzer/pkg/models"
)

// QualityThresholds defines configurable thresholds for quality validation
type QualityThresholds struct {
	// Resolution thresholds
	MinWidth       int
	MinHeight      int
	MinTotalPixels int

	// Encoded size below which the image is probably heavily compressed
	MinSizeKB float64

	// Aspect ratio beyond which vendors tend to downscale aggressively
	MaxAspectRatio float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:       640,
		MinHeight:      480,
		MinTotalPixels: 300000,
		MinSizeKB:      10,
		MaxAspectRatio: 4,
	}
}

// QualityValidator handles image quality validation logic
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// QualitySignals are the vendor-reported hints that feed quality validation.
// Nil fields mean the vendor did not report them.
type QualitySignals struct {
	IsClipArt     *bool
	IsLineDrawing *bool
	IsBlackWhite  *bool
}

// IsLowResolution reports whether meta falls under any resolution threshold
func (qv *QualityValidator) IsLowResolution(meta models.ImageMetadata) bool {
	return meta.Width*meta.Height < qv.thresholds.MinTotalPixels ||
		meta.Width < qv.thresholds.MinWidth ||
		meta.Height < qv.thresholds.MinHeight
}

// Validate checks image metadata plus vendor signals
func (qv *QualityValidator) Validate(meta models.ImageMetadata, signals QualitySignals) []models.QualityIssue {
	var issues []models.QualityIssue

	// 1. Resolution
	if qv.IsLowResolution(meta) {
		issues = append(issues, models.QualityIssue{
			Type:        "low_resolution",
			Message:     "Image resolution is low. Vision services may miss small details.",
			Severity:    "error",
			ActualValue: float64(meta.Width * meta.Height),
			Threshold:   float64(qv.thresholds.MinTotalPixels),
		})
	}

	// 2. Encoded size
	sizeKB := float64(meta.SizeBytes) / 1024
	if meta.SizeBytes > 0 && sizeKB < qv.thresholds.MinSizeKB {
		issues = append(issues, models.QualityIssue{
			Type:        "high_compression",
			Message:     "Image file is very small and may be heavily compressed.",
			Severity:    "warning",
			ActualValue: sizeKB,
			Threshold:   qv.thresholds.MinSizeKB,
		})
	}

	// 3. Aspect ratio
	if meta.Width > 0 && meta.Height > 0 {
		ratio := float64(meta.Width) / float64(meta.Height)
		if ratio < 1 {
			ratio = 1 / ratio
		}
		if ratio > qv.thresholds.MaxAspectRatio {
			issues = append(issues, models.QualityIssue{
				Type:        "extreme_aspect_ratio",
				Message:     "Image is very elongated. Consider cropping to the region of interest.",
				Severity:    "warning",
				ActualValue: ratio,
				Threshold:   qv.thresholds.MaxAspectRatio,
			})
		}
	}

	// 4. Vendor content hints
	if isTrue(signals.IsClipArt) {
		issues = append(issues, models.QualityIssue{
			Type:     "clip_art",
			Message:  "Image looks like clip art rather than a photograph.",
			Severity: "info",
		})
	}
	if isTrue(signals.IsLineDrawing) {
		issues = append(issues, models.QualityIssue{
			Type:     "line_drawing",
			Message:  "Image looks like a line drawing.",
			Severity: "info",
		})
	}
	if isTrue(signals.IsBlackWhite) {
		issues = append(issues, models.QualityIssue{
			Type:     "black_and_white",
			Message:  "Image has no color information.",
			Severity: "info",
		})
	}

	return issues
}

// Recommendations turns issues into caller-facing suggestions
func (qv *QualityValidator) Recommendations(issues []models.QualityIssue) []string {
	var recs []string
	for _, issue := range issues {
		switch issue.Type {
		case "low_resolution":
			recs = append(recs, "Use an image of at least 640x480 pixels.")
		case "high_compression":
			recs = append(recs, "Upload a less compressed version of the image.")
		case "extreme_aspect_ratio":
			recs = append(recs, "Crop the image closer to the subject.")
		}
	}
	return recs
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []models.QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
