// Package aws adapts Amazon Rekognition to the vision capability interfaces.
// Rekognition has no color or quality analysis, so the adapter does not
// implement those capabilities.
package aws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/tracing"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/pkg/models"
)

const (
	defaultRegion  = "us-east-1"
	defaultTimeout = 30 * time.Second

	generalMaxLabels      = 10
	generalMinConfidence  = 70
	classifyMaxLabels     = 20
	classifyMinConfidence = 50
)

// RekognitionAPI is the subset of the Rekognition client the adapter uses
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Client calls Rekognition with static credentials
type Client struct {
	api     RekognitionAPI
	timeout time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithAPI replaces the Rekognition client, used by tests
func WithAPI(api RekognitionAPI) Option {
	return func(c *Client) { c.api = api }
}

// New validates cfg and builds a client. No request is made.
func New(cfg models.VisionConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AWSAccessKeyID) == "" || strings.TrimSpace(cfg.AWSSecretAccessKey) == "" {
		return nil, apperrors.NewConfigError("AWS credentials are required", nil).WithProvider(vision.ProviderAWS)
	}

	region := cfg.AWSRegion
	if region == "" {
		region = defaultRegion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.api == nil {
		rekOpts := rekognition.Options{
			Region: region,
			Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSSessionToken)),
			HTTPClient:       &http.Client{Timeout: timeout},
			RetryMaxAttempts: 1,
		}
		if cfg.AWSEndpoint != "" {
			rekOpts.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
		c.api = rekognition.New(rekOpts)
	}
	return c, nil
}

// Name implements vision.Provider
func (c *Client) Name() string { return vision.ProviderAWS }

func (c *Client) callCtx(ctx context.Context, operation string) (context.Context, context.CancelFunc, func(error)) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	ctx, span := tracing.StartVendorSpan(ctx, vision.ProviderAWS, operation)
	return ctx, cancel, func(err error) { tracing.End(span, err) }
}

func (c *Client) fail(ctx context.Context, err error) error {
	status := 0
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		status = withStatus.HTTPStatusCode()
	}
	return vision.CallError(ctx, vision.ProviderAWS, status, err)
}

func (c *Client) detectLabels(ctx context.Context, operation string, in *rekognition.DetectLabelsInput) (*rekognition.DetectLabelsOutput, error) {
	ctx, cancel, end := c.callCtx(ctx, operation)
	defer cancel()
	out, err := c.api.DetectLabels(ctx, in)
	if err != nil {
		err = c.fail(ctx, err)
	}
	end(err)
	return out, err
}

// AnalyzeGeneral implements vision.GeneralAnalyzer
func (c *Client) AnalyzeGeneral(ctx context.Context, img vision.Image, _ vision.Options) (*models.GeneralResult, error) {
	out, err := c.detectLabels(ctx, "detect_labels", &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Bytes},
		MaxLabels:     aws.Int32(generalMaxLabels),
		MinConfidence: aws.Float32(generalMinConfidence),
	})
	if err != nil {
		return nil, err
	}

	res := vision.GeneralFromMetadata(img.Metadata)
	res.Labels = make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		res.Labels = append(res.Labels, aws.ToString(l.Name))
	}
	res.Provider = vision.ProviderAWS
	return res, nil
}

// DetectObjects implements vision.ObjectDetector. Only labels with instance
// boxes become objects.
func (c *Client) DetectObjects(ctx context.Context, img vision.Image, opts vision.Options) (*models.ObjectDetectionResult, error) {
	threshold := opts.ConfidenceThreshold()
	out, err := c.detectLabels(ctx, "detect_objects", &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Bytes},
		MinConfidence: aws.Float32(float32(threshold * 100)),
	})
	if err != nil {
		return nil, err
	}

	var objects []models.DetectedObject
	for _, l := range out.Labels {
		for _, inst := range l.Instances {
			objects = append(objects, models.DetectedObject{
				Label:       aws.ToString(l.Name),
				Confidence:  vision.NormalizeConfidence(float64(aws.ToFloat32(inst.Confidence)), vision.ScalePercent),
				BoundingBox: ratioBox(inst.BoundingBox),
			})
		}
	}

	res := vision.NormalizeObjects(objects, opts)
	res.Provider = vision.ProviderAWS
	return res, nil
}

// ExtractText implements vision.TextExtractor using LINE detections
func (c *Client) ExtractText(ctx context.Context, img vision.Image, opts vision.Options) (*models.TextExtractionResult, error) {
	callCtx, cancel, end := c.callCtx(ctx, "detect_text")
	defer cancel()
	out, err := c.api.DetectText(callCtx, &rekognition.DetectTextInput{Image: &types.Image{Bytes: img.Bytes}})
	if err != nil {
		err = c.fail(callCtx, err)
	}
	end(err)
	if err != nil {
		return nil, err
	}

	blocks := []models.TextBlock{}
	lines := []string{}
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine {
			continue
		}
		text := aws.ToString(d.DetectedText)
		block := models.TextBlock{
			Text:       text,
			Confidence: vision.NormalizeConfidence(float64(aws.ToFloat32(d.Confidence)), vision.ScalePercent),
		}
		if d.Geometry != nil {
			block.BoundingBox = ratioBox(d.Geometry.BoundingBox)
			for _, p := range d.Geometry.Polygon {
				block.BoundingBox.Polygon = append(block.BoundingBox.Polygon,
					models.Point{X: float64(aws.ToFloat32(p.X)), Y: float64(aws.ToFloat32(p.Y))})
			}
		}
		blocks = append(blocks, block)
		lines = append(lines, text)
	}

	return &models.TextExtractionResult{
		Blocks:      blocks,
		FullText:    strings.Join(lines, "\n"),
		TotalBlocks: len(blocks),
		Language:    opts.Language(),
		Provider:    vision.ProviderAWS,
	}, nil
}

// DetectFaces implements vision.FaceDetector
func (c *Client) DetectFaces(ctx context.Context, img vision.Image, opts vision.Options) (*models.FaceDetectionResult, error) {
	callCtx, cancel, end := c.callCtx(ctx, "detect_faces")
	defer cancel()
	out, err := c.api.DetectFaces(callCtx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: img.Bytes},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		err = c.fail(callCtx, err)
	}
	end(err)
	if err != nil {
		return nil, err
	}

	faces := make([]models.Face, 0, len(out.FaceDetails))
	for _, f := range out.FaceDetails {
		face := models.Face{
			BoundingBox: ratioBox(f.BoundingBox),
			Confidence:  vision.FloatPtr(vision.NormalizeConfidence(float64(aws.ToFloat32(f.Confidence)), vision.ScalePercent)),
			Attributes:  faceAttributes(f),
		}
		if opts.ReturnLandmarks() {
			for _, l := range f.Landmarks {
				face.Landmarks = append(face.Landmarks, models.Landmark{
					Type: vision.SnakeCase(string(l.Type)),
					X:    float64(aws.ToFloat32(l.X)),
					Y:    float64(aws.ToFloat32(l.Y)),
				})
			}
		}
		faces = append(faces, face)
	}

	return &models.FaceDetectionResult{
		Faces:      faces,
		TotalFaces: len(faces),
		Provider:   vision.ProviderAWS,
	}, nil
}

func faceAttributes(f types.FaceDetail) map[string]interface{} {
	attrs := map[string]interface{}{}
	if f.AgeRange != nil {
		attrs["age_range"] = map[string]int32{"low": aws.ToInt32(f.AgeRange.Low), "high": aws.ToInt32(f.AgeRange.High)}
	}
	if f.Gender != nil {
		attrs["gender"] = map[string]interface{}{
			"value":      strings.ToLower(string(f.Gender.Value)),
			"confidence": percent(f.Gender.Confidence),
		}
	}
	if len(f.Emotions) > 0 {
		emotions := make(map[string]float64, len(f.Emotions))
		for _, e := range f.Emotions {
			emotions[strings.ToLower(string(e.Type))] = percent(e.Confidence)
		}
		attrs["emotions"] = emotions
	}
	if f.Smile != nil {
		attrs["smile"] = flag(f.Smile.Value, f.Smile.Confidence)
	}
	if f.Eyeglasses != nil {
		attrs["eyeglasses"] = flag(f.Eyeglasses.Value, f.Eyeglasses.Confidence)
	}
	if f.Sunglasses != nil {
		attrs["sunglasses"] = flag(f.Sunglasses.Value, f.Sunglasses.Confidence)
	}
	if f.Beard != nil {
		attrs["beard"] = flag(f.Beard.Value, f.Beard.Confidence)
	}
	if f.Mustache != nil {
		attrs["mustache"] = flag(f.Mustache.Value, f.Mustache.Confidence)
	}
	return attrs
}

func flag(value bool, confidence *float32) map[string]interface{} {
	return map[string]interface{}{"value": value, "confidence": percent(confidence)}
}

func percent(v *float32) float64 {
	return vision.NormalizeConfidence(float64(aws.ToFloat32(v)), vision.ScalePercent)
}

// ClassifyImage implements vision.ImageClassifier; parent labels become categories
func (c *Client) ClassifyImage(ctx context.Context, img vision.Image, opts vision.Options) (*models.ClassificationResult, error) {
	out, err := c.detectLabels(ctx, "classify_image", &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Bytes},
		MaxLabels:     aws.Int32(classifyMaxLabels),
		MinConfidence: aws.Float32(classifyMinConfidence),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]models.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		label := models.Label{
			Name:       aws.ToString(l.Name),
			Confidence: vision.NormalizeConfidence(float64(aws.ToFloat32(l.Confidence)), vision.ScalePercent),
		}
		for _, p := range l.Parents {
			label.Categories = append(label.Categories, aws.ToString(p.Name))
		}
		labels = append(labels, label)
	}
	vision.SortLabels(labels)
	labels = vision.Truncate(labels, opts.MaxResultsOr(classifyMaxLabels))

	res := &models.ClassificationResult{
		Labels:       labels,
		PrimaryLabel: vision.PrimaryName(labels),
		Provider:     vision.ProviderAWS,
	}
	if len(labels) > 0 && len(labels[0].Categories) > 0 {
		res.PrimaryCategory = labels[0].Categories[0]
	}
	return res, nil
}

func ratioBox(b *types.BoundingBox) models.BoundingBox {
	if b == nil {
		return models.BoundingBox{Unit: models.UnitRatio}
	}
	return models.BoundingBox{
		X:      float64(aws.ToFloat32(b.Left)),
		Y:      float64(aws.ToFloat32(b.Top)),
		Width:  float64(aws.ToFloat32(b.Width)),
		Height: float64(aws.ToFloat32(b.Height)),
		Unit:   models.UnitRatio,
	}
}
