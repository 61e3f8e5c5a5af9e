// Package google adapts Google Cloud Vision (images:annotate) to the vision
// capability interfaces. Quality assessment is not offered by the API.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/tracing"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/pkg/models"
)

const (
	defaultTimeout = 30 * time.Second

	featureLabels     = "LABEL_DETECTION"
	featureProperties = "IMAGE_PROPERTIES"
	featureObjects    = "OBJECT_LOCALIZATION"
	featureText       = "TEXT_DETECTION"
	featureFaces      = "FACE_DETECTION"

	generalMaxLabels  = 10
	classifyMaxLabels = 20
)

// Client calls images:annotate with an API key
type Client struct {
	svc     *visionapi.Service
	timeout time.Duration
}

// New validates cfg and builds a client. No request is made.
func New(ctx context.Context, cfg models.VisionConfig) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		return nil, apperrors.NewConfigError("Google Cloud API key is required", nil).WithProvider(vision.ProviderGoogle)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.GoogleAPIKey)}
	if cfg.GoogleEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.GoogleEndpoint))
	}
	if cfg.GoogleProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.GoogleProjectID))
	}

	svc, err := visionapi.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigError("Failed to create Google Cloud Vision client", err).WithProvider(vision.ProviderGoogle)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

// Name implements vision.Provider
func (c *Client) Name() string { return vision.ProviderGoogle }

// annotate sends one image with the given features and returns its response
func (c *Client) annotate(ctx context.Context, operation string, img vision.Image, imageContext *visionapi.ImageContext, features ...*visionapi.Feature) (*visionapi.AnnotateImageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx, span := tracing.StartVendorSpan(ctx, vision.ProviderGoogle, operation)

	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:        &visionapi.Image{Content: base64.StdEncoding.EncodeToString(img.Bytes)},
			Features:     features,
			ImageContext: imageContext,
		}},
	}

	batch, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		status := 0
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		err = vision.CallError(ctx, vision.ProviderGoogle, status, err)
		tracing.End(span, err)
		return nil, err
	}

	var resp *visionapi.AnnotateImageResponse
	if len(batch.Responses) > 0 {
		resp = batch.Responses[0]
	}
	switch {
	case resp == nil:
		err = apperrors.NewVendorError(vision.ProviderGoogle, 0, "Vision AI provider returned no response", nil)
	case resp.Error != nil && resp.Error.Message != "":
		err = apperrors.NewVendorError(vision.ProviderGoogle, 0, vision.VendorMessage, errors.New(resp.Error.Message))
	}
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AnalyzeGeneral implements vision.GeneralAnalyzer
func (c *Client) AnalyzeGeneral(ctx context.Context, img vision.Image, _ vision.Options) (*models.GeneralResult, error) {
	resp, err := c.annotate(ctx, "analyze_general", img, nil,
		&visionapi.Feature{Type: featureLabels, MaxResults: generalMaxLabels},
		&visionapi.Feature{Type: featureProperties},
	)
	if err != nil {
		return nil, err
	}

	res := vision.GeneralFromMetadata(img.Metadata)
	res.Labels = make([]string, 0, len(resp.LabelAnnotations))
	for _, l := range resp.LabelAnnotations {
		res.Labels = append(res.Labels, l.Description)
	}
	if colors := dominantColors(resp); len(colors) > 0 {
		res.DominantColor = hexColor(colors[0].Color)
	}
	res.Provider = vision.ProviderGoogle
	return res, nil
}

// DetectObjects implements vision.ObjectDetector
func (c *Client) DetectObjects(ctx context.Context, img vision.Image, opts vision.Options) (*models.ObjectDetectionResult, error) {
	resp, err := c.annotate(ctx, "detect_objects", img, nil, &visionapi.Feature{Type: featureObjects})
	if err != nil {
		return nil, err
	}

	objects := make([]models.DetectedObject, 0, len(resp.LocalizedObjectAnnotations))
	for _, o := range resp.LocalizedObjectAnnotations {
		label := o.Name
		if label == "" {
			label = "unknown"
		}
		objects = append(objects, models.DetectedObject{
			Label:       label,
			Confidence:  vision.NormalizeConfidence(o.Score, vision.ScaleUnit),
			BoundingBox: polyBox(o.BoundingPoly),
		})
	}

	res := vision.NormalizeObjects(objects, opts)
	res.Provider = vision.ProviderGoogle
	return res, nil
}

// ExtractText implements vision.TextExtractor. Blocks come from the full
// text annotation when present, otherwise from the word annotations.
func (c *Client) ExtractText(ctx context.Context, img vision.Image, opts vision.Options) (*models.TextExtractionResult, error) {
	var imageContext *visionapi.ImageContext
	if opts.Has(vision.OptLanguage) {
		imageContext = &visionapi.ImageContext{LanguageHints: []string{opts.Language()}}
	}
	resp, err := c.annotate(ctx, "extract_text", img, imageContext, &visionapi.Feature{Type: featureText})
	if err != nil {
		return nil, err
	}

	blocks := fullTextBlocks(resp.FullTextAnnotation)
	if len(blocks) == 0 && len(resp.TextAnnotations) > 1 {
		for _, ann := range resp.TextAnnotations[1:] {
			blocks = append(blocks, models.TextBlock{
				Text:        ann.Description,
				Confidence:  vision.NormalizeConfidence(ann.Confidence, vision.ScaleUnit),
				BoundingBox: polyBox(ann.BoundingPoly),
			})
		}
	}

	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, b.Text)
	}
	language := opts.Language()
	if len(resp.TextAnnotations) > 0 && resp.TextAnnotations[0].Locale != "" {
		language = resp.TextAnnotations[0].Locale
	}

	return &models.TextExtractionResult{
		Blocks:      blocks,
		FullText:    strings.Join(lines, "\n"),
		TotalBlocks: len(blocks),
		Language:    language,
		Provider:    vision.ProviderGoogle,
	}, nil
}

func fullTextBlocks(annotation *visionapi.TextAnnotation) []models.TextBlock {
	blocks := []models.TextBlock{}
	if annotation == nil {
		return blocks
	}
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			var words []string
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					var sb strings.Builder
					for _, symbol := range word.Symbols {
						sb.WriteString(symbol.Text)
					}
					words = append(words, sb.String())
				}
			}
			if len(words) == 0 {
				continue
			}
			blocks = append(blocks, models.TextBlock{
				Text:        strings.Join(words, " "),
				Confidence:  vision.NormalizeConfidence(block.Confidence, vision.ScaleUnit),
				BoundingBox: polyBox(block.BoundingBox),
			})
		}
	}
	return blocks
}

// DetectFaces implements vision.FaceDetector
func (c *Client) DetectFaces(ctx context.Context, img vision.Image, opts vision.Options) (*models.FaceDetectionResult, error) {
	resp, err := c.annotate(ctx, "detect_faces", img, nil, &visionapi.Feature{Type: featureFaces})
	if err != nil {
		return nil, err
	}

	faces := make([]models.Face, 0, len(resp.FaceAnnotations))
	for _, f := range resp.FaceAnnotations {
		face := models.Face{
			BoundingBox: polyBox(f.BoundingPoly),
			Confidence:  vision.FloatPtr(vision.NormalizeConfidence(f.DetectionConfidence, vision.ScaleUnit)),
			Attributes: map[string]interface{}{
				"joy":           likelihood(f.JoyLikelihood),
				"sorrow":        likelihood(f.SorrowLikelihood),
				"anger":         likelihood(f.AngerLikelihood),
				"surprise":      likelihood(f.SurpriseLikelihood),
				"headwear":      likelihood(f.HeadwearLikelihood),
				"blurred":       likelihood(f.BlurredLikelihood),
				"under_exposed": likelihood(f.UnderExposedLikelihood),
			},
		}
		if opts.ReturnLandmarks() {
			for _, l := range f.Landmarks {
				if l.Position == nil {
					continue
				}
				face.Landmarks = append(face.Landmarks, models.Landmark{
					Type: vision.SnakeCase(l.Type),
					X:    l.Position.X,
					Y:    l.Position.Y,
				})
			}
		}
		faces = append(faces, face)
	}

	return &models.FaceDetectionResult{
		Faces:      faces,
		TotalFaces: len(faces),
		Provider:   vision.ProviderGoogle,
	}, nil
}

func likelihood(v string) string {
	if v == "" {
		return "unknown"
	}
	return strings.ToLower(v)
}

// ClassifyImage implements vision.ImageClassifier
func (c *Client) ClassifyImage(ctx context.Context, img vision.Image, opts vision.Options) (*models.ClassificationResult, error) {
	limit := opts.MaxResultsOr(classifyMaxLabels)
	resp, err := c.annotate(ctx, "classify_image", img, nil, &visionapi.Feature{Type: featureLabels, MaxResults: int64(limit)})
	if err != nil {
		return nil, err
	}

	labels := make([]models.Label, 0, len(resp.LabelAnnotations))
	for _, l := range resp.LabelAnnotations {
		labels = append(labels, models.Label{Name: l.Description, Confidence: vision.NormalizeConfidence(l.Score, vision.ScaleUnit)})
	}
	vision.SortLabels(labels)
	labels = vision.Truncate(labels, limit)

	return &models.ClassificationResult{
		Labels:       labels,
		PrimaryLabel: vision.PrimaryName(labels),
		Provider:     vision.ProviderGoogle,
	}, nil
}

// AnalyzeColors implements vision.ColorAnalyzer from IMAGE_PROPERTIES
func (c *Client) AnalyzeColors(ctx context.Context, img vision.Image, _ vision.Options) (*models.ColorAnalysisResult, error) {
	resp, err := c.annotate(ctx, "analyze_colors", img, nil, &visionapi.Feature{Type: featureProperties})
	if err != nil {
		return nil, err
	}

	colors := dominantColors(resp)
	swatches := make([]models.ColorSwatch, 0, len(colors))
	palette := make([]string, 0, len(colors))
	var brightness, weight float64
	for _, ci := range colors {
		hex := hexColor(ci.Color)
		swatches = append(swatches, models.ColorSwatch{
			Hex:        hex,
			Percentage: vision.FloatPtr(vision.Round2(ci.PixelFraction * 100)),
		})
		palette = append(palette, hex)
		if ci.Color != nil {
			brightness += ci.PixelFraction * (0.299*ci.Color.Red + 0.587*ci.Color.Green + 0.114*ci.Color.Blue) / 255
			weight += ci.PixelFraction
		}
	}

	res := &models.ColorAnalysisResult{
		DominantColors: swatches,
		Palette:        palette,
		Provider:       vision.ProviderGoogle,
	}
	if len(palette) > 0 {
		res.AccentColor = palette[0]
	}
	if weight > 0 {
		res.AverageBrightness = vision.FloatPtr(vision.Round2(brightness / weight))
	}
	return res, nil
}

func dominantColors(resp *visionapi.AnnotateImageResponse) []*visionapi.ColorInfo {
	if resp.ImagePropertiesAnnotation == nil || resp.ImagePropertiesAnnotation.DominantColors == nil {
		return nil
	}
	return resp.ImagePropertiesAnnotation.DominantColors.Colors
}

func hexColor(c *visionapi.Color) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("#%02X%02X%02X", clampByte(c.Red), clampByte(c.Green), clampByte(c.Blue))
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// polyBox prefers normalized vertices, which come back for object localization
func polyBox(poly *visionapi.BoundingPoly) models.BoundingBox {
	if poly == nil {
		return models.BoundingBox{Unit: models.UnitPixel}
	}
	if len(poly.NormalizedVertices) > 0 {
		points := make([]models.Point, 0, len(poly.NormalizedVertices))
		for _, v := range poly.NormalizedVertices {
			points = append(points, models.Point{X: v.X, Y: v.Y})
		}
		return vision.BoxFromPolygon(points, models.UnitRatio)
	}
	points := make([]models.Point, 0, len(poly.Vertices))
	for _, v := range poly.Vertices {
		points = append(points, models.Point{X: float64(v.X), Y: float64(v.Y)})
	}
	return vision.BoxFromPolygon(points, models.UnitPixel)
}
