package models

// AnalysisResult is the canonical, backend-agnostic output of one analysis.
// Every variant below implements it; the concrete type is selected by the
// analysis type of the request.
type AnalysisResult interface {
	AnalysisType() string
	ProviderName() string
}

// ImageMetadata is derived once per request from the decoded image header
type ImageMetadata struct {
	Format    string `json:"format"`
	ColorMode string `json:"mode"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
}

// Box units
const (
	UnitPixel = "pixel"
	UnitRatio = "ratio"
)

// Point is a single polygon vertex
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is an axis-aligned box. Unit is "ratio" when the vendor
// reports coordinates relative to the image size. Polygon carries the
// original vertices when the vendor returned a quadrilateral.
type BoundingBox struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Unit    string  `json:"unit"`
	Polygon []Point `json:"polygon,omitempty"`
}

// GeneralResult backs the "general" analysis type
type GeneralResult struct {
	Format        string   `json:"format"`
	ColorMode     string   `json:"color_mode"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	AspectRatio   float64  `json:"aspect_ratio"`
	SizeKB        float64  `json:"size_kb"`
	Megapixels    float64  `json:"megapixels"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	DominantColor string   `json:"dominant_color,omitempty"`
	IsClipArt     *bool    `json:"is_clip_art,omitempty"`
	IsLineDrawing *bool    `json:"is_line_drawing,omitempty"`
	Provider      string   `json:"provider"`
	Note          string   `json:"note,omitempty"`
}

func (r *GeneralResult) AnalysisType() string { return "general" }
func (r *GeneralResult) ProviderName() string { return r.Provider }

// DetectedObject is a single localized object
type DetectedObject struct {
	Label       string      `json:"label"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// ObjectDetectionResult backs the "object_detection" analysis type
type ObjectDetectionResult struct {
	Objects             []DetectedObject `json:"objects_detected"`
	TotalObjects        int              `json:"total_objects"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
	Model               string           `json:"detection_model,omitempty"`
	Provider            string           `json:"provider"`
	Note                string           `json:"note,omitempty"`
}

func (r *ObjectDetectionResult) AnalysisType() string { return "object_detection" }
func (r *ObjectDetectionResult) ProviderName() string { return r.Provider }

// TextBlock is one recognized line or block of text
type TextBlock struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// TextAccuracy compares the extracted text with a caller-supplied reference
type TextAccuracy struct {
	ExpectedText       string  `json:"expected_text"`
	WordErrorRate      float64 `json:"word_error_rate"`
	CharacterErrorRate float64 `json:"character_error_rate"`
	ExactMatch         bool    `json:"exact_match"`
}

// TextExtractionResult backs the "text_extraction" analysis type
type TextExtractionResult struct {
	Blocks      []TextBlock   `json:"text_blocks"`
	FullText    string        `json:"full_text"`
	TotalBlocks int           `json:"total_blocks"`
	Language    string        `json:"language,omitempty"`
	Accuracy    *TextAccuracy `json:"accuracy,omitempty"`
	Provider    string        `json:"provider"`
	Note        string        `json:"note,omitempty"`
}

func (r *TextExtractionResult) AnalysisType() string { return "text_extraction" }
func (r *TextExtractionResult) ProviderName() string { return r.Provider }

// Landmark is a named facial keypoint
type Landmark struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Face is a single detected face. Confidence is nil when the vendor does
// not score detections.
type Face struct {
	FaceID      string                 `json:"face_id,omitempty"`
	BoundingBox BoundingBox            `json:"bounding_box"`
	Confidence  *float64               `json:"confidence,omitempty"`
	Attributes  map[string]interface{} `json:"attributes"`
	Landmarks   []Landmark             `json:"landmarks,omitempty"`
}

// FaceDetectionResult backs the "face_detection" analysis type
type FaceDetectionResult struct {
	Faces      []Face `json:"faces_detected"`
	TotalFaces int    `json:"total_faces"`
	Model      string `json:"detection_model,omitempty"`
	Provider   string `json:"provider"`
	Note       string `json:"note,omitempty"`
}

func (r *FaceDetectionResult) AnalysisType() string { return "face_detection" }
func (r *FaceDetectionResult) ProviderName() string { return r.Provider }

// Label is a named classification with its confidence
type Label struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Categories []string `json:"categories,omitempty"`
}

// ClassificationResult backs the "image_classification" analysis type.
// Labels and Categories are sorted by descending confidence.
type ClassificationResult struct {
	Labels          []Label `json:"labels"`
	Categories      []Label `json:"categories,omitempty"`
	PrimaryLabel    string  `json:"primary_label"`
	PrimaryCategory string  `json:"primary_category,omitempty"`
	Model           string  `json:"classification_model,omitempty"`
	Provider        string  `json:"provider"`
	Note            string  `json:"note,omitempty"`
}

func (r *ClassificationResult) AnalysisType() string { return "image_classification" }
func (r *ClassificationResult) ProviderName() string { return r.Provider }

// ColorSwatch is one dominant color. Percentage is nil when the vendor only names colors.
type ColorSwatch struct {
	Name       string   `json:"name,omitempty"`
	Hex        string   `json:"hex,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// ColorAnalysisResult backs the "color_analysis" analysis type
type ColorAnalysisResult struct {
	DominantColors     []ColorSwatch `json:"dominant_colors"`
	DominantForeground string        `json:"dominant_color_foreground,omitempty"`
	DominantBackground string        `json:"dominant_color_background,omitempty"`
	AccentColor        string        `json:"accent_color,omitempty"`
	IsBlackAndWhite    *bool         `json:"is_black_and_white,omitempty"`
	Palette            []string      `json:"color_palette,omitempty"`
	AverageBrightness  *float64      `json:"average_brightness,omitempty"`
	Provider           string        `json:"provider"`
	Note               string        `json:"note,omitempty"`
}

func (r *ColorAnalysisResult) AnalysisType() string { return "color_analysis" }
func (r *ColorAnalysisResult) ProviderName() string { return r.Provider }

// QualityIssue is a metadata-level quality finding
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"`
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// QualityAssessmentResult backs the "quality_assessment" analysis type
type QualityAssessmentResult struct {
	Resolution            string             `json:"resolution"`
	Megapixels            float64            `json:"megapixels"`
	Format                string             `json:"format"`
	ColorMode             string             `json:"color_mode,omitempty"`
	SizeKB                float64            `json:"size_kb"`
	IsLowResolution       bool               `json:"is_low_resolution"`
	IsClipArt             *bool              `json:"is_clip_art,omitempty"`
	IsLineDrawing         *bool              `json:"is_line_drawing,omitempty"`
	OverallScore          *float64           `json:"overall_quality_score,omitempty"`
	Signals               map[string]float64 `json:"signals,omitempty"`
	Issues                []QualityIssue     `json:"issues,omitempty"`
	Recommendations       []string           `json:"recommendations,omitempty"`
	IsSuitableForAnalysis bool               `json:"is_suitable_for_analysis"`
	Provider              string             `json:"provider"`
	Note                  string             `json:"note,omitempty"`
}

func (r *QualityAssessmentResult) AnalysisType() string { return "quality_assessment" }
func (r *QualityAssessmentResult) ProviderName() string { return r.Provider }
