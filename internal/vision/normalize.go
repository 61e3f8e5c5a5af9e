package vision

import (
	"fmt"
	"math"
	"sort"

	"go-vision-analyzer/pkg/models"
)

// Scale describes the range a vendor reports confidences in
type Scale int

const (
	// ScaleUnit is a 0–1 confidence
	ScaleUnit Scale = iota
	// ScalePercent is a 0–100 confidence
	ScalePercent
)

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeConfidence rescales a vendor confidence into [0,1] rounded to 2dp
func NormalizeConfidence(v float64, scale Scale) float64 {
	if scale == ScalePercent {
		v /= 100
	}
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return Round2(v)
}

// FilterByConfidence keeps the items whose confidence is at least threshold.
// Order is preserved, so applying it twice yields the same slice contents.
func FilterByConfidence[T any](items []T, threshold float64, confidence func(T) float64) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if confidence(item) >= threshold {
			kept = append(kept, item)
		}
	}
	return kept
}

// SortByConfidence orders items by descending confidence; ties keep vendor order
func SortByConfidence[T any](items []T, confidence func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return confidence(items[i]) > confidence(items[j])
	})
}

// Truncate caps items at n entries
func Truncate[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func objectConfidence(o models.DetectedObject) float64 { return o.Confidence }

func labelConfidence(l models.Label) float64 { return l.Confidence }

// NormalizeObjects applies the uniform object pipeline: threshold filter,
// confidence sort, max_objects cap. Confidences must already be normalized.
func NormalizeObjects(objects []models.DetectedObject, opts Options) *models.ObjectDetectionResult {
	threshold := opts.ConfidenceThreshold()
	kept := FilterByConfidence(objects, threshold, objectConfidence)
	SortByConfidence(kept, objectConfidence)
	kept = Truncate(kept, opts.MaxObjects())

	return &models.ObjectDetectionResult{
		Objects:             kept,
		TotalObjects:        len(kept),
		ConfidenceThreshold: threshold,
	}
}

// SortLabels orders labels by descending confidence in place
func SortLabels(labels []models.Label) {
	SortByConfidence(labels, labelConfidence)
}

// PrimaryName returns the first label name or "unknown"
func PrimaryName(labels []models.Label) string {
	if len(labels) == 0 {
		return "unknown"
	}
	return labels[0].Name
}

// GeneralFromMetadata derives the metadata-only part of a general result
func GeneralFromMetadata(meta models.ImageMetadata) *models.GeneralResult {
	return &models.GeneralResult{
		Format:      meta.Format,
		ColorMode:   meta.ColorMode,
		Width:       meta.Width,
		Height:      meta.Height,
		AspectRatio: AspectRatio(meta),
		SizeKB:      SizeKB(meta),
		Megapixels:  Megapixels(meta),
	}
}

// AspectRatio is width/height at 2dp, 0 for a degenerate height
func AspectRatio(meta models.ImageMetadata) float64 {
	if meta.Height <= 0 {
		return 0
	}
	return Round2(float64(meta.Width) / float64(meta.Height))
}

// SizeKB is the encoded size in kilobytes at 2dp
func SizeKB(meta models.ImageMetadata) float64 {
	return Round2(float64(meta.SizeBytes) / 1024)
}

// Megapixels is width*height in millions at 2dp
func Megapixels(meta models.ImageMetadata) float64 {
	return Round2(float64(meta.Width) * float64(meta.Height) / 1_000_000)
}

// Resolution renders "WIDTHxHEIGHT"
func Resolution(meta models.ImageMetadata) string {
	return fmt.Sprintf("%dx%d", meta.Width, meta.Height)
}

// BoxFromPolygon returns the axis-aligned box around points, keeping the polygon
func BoxFromPolygon(points []models.Point, unit string) models.BoundingBox {
	if len(points) == 0 {
		return models.BoundingBox{Unit: unit}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return models.BoundingBox{
		X:       minX,
		Y:       minY,
		Width:   maxX - minX,
		Height:  maxY - minY,
		Unit:    unit,
		Polygon: points,
	}
}

// PolygonFromFlat converts [x1,y1,x2,y2,...] into points; a trailing odd value is dropped
func PolygonFromFlat(coords []float64) []models.Point {
	points := make([]models.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		points = append(points, models.Point{X: coords[i], Y: coords[i+1]})
	}
	return points
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool { return &b }

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 { return &f }
