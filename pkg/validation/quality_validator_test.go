package validation

import (
	"testing"

	"go-vision-analyzer/pkg/models"
)

func TestNewQualityValidator(t *testing.T) {
	validator := NewQualityValidator()
	if validator == nil {
		t.Fatal("Expected non-nil quality validator")
	}

	expected := DefaultQualityThresholds().MinTotalPixels
	if validator.thresholds.MinTotalPixels != expected {
		t.Errorf("Expected MinTotalPixels to be %d, got %d", expected, validator.thresholds.MinTotalPixels)
	}
}

func TestValidate_HighQuality(t *testing.T) {
	validator := NewQualityValidator()

	meta := models.ImageMetadata{Format: "JPEG", ColorMode: "RGB", Width: 1920, Height: 1080, SizeBytes: 512000}
	issues := validator.Validate(meta, QualitySignals{})

	if len(issues) > 0 {
		t.Errorf("Expected no quality issues for high-quality image, got: %v", issues)
	}
	if validator.HasCriticalIssues(issues) {
		t.Error("Expected no critical issues")
	}
}

func TestValidate_LowResolution(t *testing.T) {
	validator := NewQualityValidator()

	meta := models.ImageMetadata{Width: 320, Height: 240, SizeBytes: 40000}
	issues := validator.Validate(meta, QualitySignals{})

	found := false
	for _, issue := range issues {
		if issue.Type == "low_resolution" {
			found = true
			if issue.Severity != "error" {
				t.Errorf("Expected low_resolution to be error severity, got %s", issue.Severity)
			}
			if issue.ActualValue != 76800 {
				t.Errorf("Expected actual value 76800, got %f", issue.ActualValue)
			}
		}
	}
	if !found {
		t.Error("Expected low_resolution issue")
	}
	if !validator.HasCriticalIssues(issues) {
		t.Error("Expected low resolution to be critical")
	}
	if len(validator.Recommendations(issues)) == 0 {
		t.Error("Expected a recommendation for low resolution")
	}
}

func TestValidate_CompressionAndAspectRatio(t *testing.T) {
	validator := NewQualityValidator()

	meta := models.ImageMetadata{Width: 5000, Height: 800, SizeBytes: 2048}
	issues := validator.Validate(meta, QualitySignals{})

	types := map[string]bool{}
	for _, issue := range issues {
		types[issue.Type] = true
	}
	if !types["high_compression"] {
		t.Error("Expected high_compression issue")
	}
	if !types["extreme_aspect_ratio"] {
		t.Error("Expected extreme_aspect_ratio issue")
	}
	if validator.HasCriticalIssues(issues) {
		t.Error("Expected only warnings")
	}
}

func TestValidate_VendorSignals(t *testing.T) {
	validator := NewQualityValidator()
	yes, no := true, false

	meta := models.ImageMetadata{Width: 1024, Height: 768, SizeBytes: 100000}
	issues := validator.Validate(meta, QualitySignals{IsClipArt: &yes, IsLineDrawing: &no})

	if len(issues) != 1 || issues[0].Type != "clip_art" {
		t.Fatalf("Expected a single clip_art issue, got %v", issues)
	}
	if issues[0].Severity != "info" {
		t.Errorf("Expected info severity, got %s", issues[0].Severity)
	}
}
