// Package azure adapts Azure Computer Vision and the Azure Face API to the
// vision capability interfaces.
package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/tracing"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/poll"
	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

const (
	defaultAPIVersion = "2023-10-01"
	defaultTimeout    = 30 * time.Second

	headerKey               = "Ocp-Apim-Subscription-Key"
	headerOperationLocation = "Operation-Location"
	faceAttributes          = "age,gender,emotion,smile,facialHair,glasses,accessories"
)

// Client talks to Azure over REST
type Client struct {
	endpoint     string
	faceEndpoint string
	apiKey       string
	apiVersion   string

	http    *resty.Client
	poller  *poll.Poller
	quality *validation.QualityValidator
}

// Option customizes a Client
type Option func(*Client)

// WithPoller replaces the Read operation poller
func WithPoller(p *poll.Poller) Option {
	return func(c *Client) { c.poller = p }
}

// New validates cfg and builds a client. No request is made.
func New(cfg models.VisionConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.AzureEndpoint) == "" || strings.TrimSpace(cfg.AzureAPIKey) == "" {
		return nil, apperrors.NewConfigError("Azure endpoint and API key are required", nil).WithProvider(vision.ProviderAzure)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	apiVersion := cfg.AzureAPIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	faceEndpoint := cfg.AzureFaceEndpoint
	if faceEndpoint == "" {
		faceEndpoint = cfg.AzureEndpoint
	}

	c := &Client{
		endpoint:     strings.TrimRight(cfg.AzureEndpoint, "/"),
		faceEndpoint: strings.TrimRight(faceEndpoint, "/"),
		apiKey:       cfg.AzureAPIKey,
		apiVersion:   apiVersion,
		http:         resty.New().SetTimeout(timeout),
		poller:       poll.New(vision.ProviderAzure),
		quality:      validation.NewQualityValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements vision.Provider
func (c *Client) Name() string { return vision.ProviderAzure }

func (c *Client) visionURL(path string) string {
	return fmt.Sprintf("%s/vision/v%s/%s", c.endpoint, c.apiVersion, path)
}

// post sends the image bytes and decodes a 2xx JSON body into out
func (c *Client) post(ctx context.Context, provider, operation, url string, params map[string]string, body []byte, out interface{}) (*resty.Response, error) {
	ctx, span := tracing.StartVendorSpan(ctx, provider, operation)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerKey, c.apiKey).
		SetHeader("Content-Type", "application/octet-stream").
		SetQueryParams(params).
		SetBody(body).
		Post(url)
	err = c.checkResponse(ctx, provider, resp, err, out)
	tracing.End(span, err)
	return resp, err
}

func (c *Client) get(ctx context.Context, operation, url string, out interface{}) error {
	ctx, span := tracing.StartVendorSpan(ctx, vision.ProviderAzure, operation)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerKey, c.apiKey).
		Get(url)
	err = c.checkResponse(ctx, vision.ProviderAzure, resp, err, out)
	tracing.End(span, err)
	return err
}

func (c *Client) checkResponse(ctx context.Context, provider string, resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return vision.CallError(ctx, provider, 0, err)
	}
	if !resp.IsSuccess() {
		return vision.CallError(ctx, provider, resp.StatusCode(), fmt.Errorf("%s", errorMessage(resp.Body())))
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.NewVendorError(provider, resp.StatusCode(), "Vision AI provider returned an unreadable response", err)
	}
	return nil
}

// errorMessage pulls the message out of an Azure error envelope
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Code != "" {
			return envelope.Error.Code + ": " + envelope.Error.Message
		}
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(http.StatusBadGateway)
	}
	return msg
}

type analyzeResponse struct {
	Description struct {
		Tags     []string `json:"tags"`
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
	Metadata struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	} `json:"metadata"`
	ImageType struct {
		ClipArtType     int `json:"clipArtType"`
		LineDrawingType int `json:"lineDrawingType"`
	} `json:"imageType"`
	Categories []struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	} `json:"categories"`
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Color struct {
		DominantColorForeground string   `json:"dominantColorForeground"`
		DominantColorBackground string   `json:"dominantColorBackground"`
		DominantColors          []string `json:"dominantColors"`
		AccentColor             string   `json:"accentColor"`
		IsBWImg                 bool     `json:"isBwImg"`
	} `json:"color"`
}

func (c *Client) analyze(ctx context.Context, operation string, img vision.Image, params map[string]string) (*analyzeResponse, error) {
	var out analyzeResponse
	if _, err := c.post(ctx, vision.ProviderAzure, operation, c.visionURL("analyze"), params, img.Bytes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeGeneral implements vision.GeneralAnalyzer
func (c *Client) AnalyzeGeneral(ctx context.Context, img vision.Image, opts vision.Options) (*models.GeneralResult, error) {
	data, err := c.analyze(ctx, "analyze_general", img, map[string]string{
		"visualFeatures": "Description,Metadata,ImageType",
		"language":       opts.Language(),
	})
	if err != nil {
		return nil, err
	}

	meta := img.Metadata
	if data.Metadata.Width > 0 && data.Metadata.Height > 0 {
		meta.Width, meta.Height = data.Metadata.Width, data.Metadata.Height
	}

	res := vision.GeneralFromMetadata(meta)
	if len(data.Description.Captions) > 0 {
		res.Description = data.Description.Captions[0].Text
	}
	res.Tags = data.Description.Tags
	res.IsClipArt = vision.BoolPtr(data.ImageType.ClipArtType > 0)
	res.IsLineDrawing = vision.BoolPtr(data.ImageType.LineDrawingType > 0)
	res.Provider = vision.ProviderAzure
	return res, nil
}

type detectResponse struct {
	Objects []struct {
		Rectangle struct {
			X int `json:"x"`
			Y int `json:"y"`
			W int `json:"w"`
			H int `json:"h"`
		} `json:"rectangle"`
		Object     string  `json:"object"`
		Confidence float64 `json:"confidence"`
	} `json:"objects"`
}

// DetectObjects implements vision.ObjectDetector
func (c *Client) DetectObjects(ctx context.Context, img vision.Image, opts vision.Options) (*models.ObjectDetectionResult, error) {
	var data detectResponse
	if _, err := c.post(ctx, vision.ProviderAzure, "detect_objects", c.visionURL("detect"), nil, img.Bytes, &data); err != nil {
		return nil, err
	}

	objects := make([]models.DetectedObject, 0, len(data.Objects))
	for _, o := range data.Objects {
		label := o.Object
		if label == "" {
			label = "unknown"
		}
		objects = append(objects, models.DetectedObject{
			Label:      label,
			Confidence: vision.NormalizeConfidence(o.Confidence, vision.ScaleUnit),
			BoundingBox: models.BoundingBox{
				X:      float64(o.Rectangle.X),
				Y:      float64(o.Rectangle.Y),
				Width:  float64(o.Rectangle.W),
				Height: float64(o.Rectangle.H),
				Unit:   models.UnitPixel,
			},
		})
	}

	res := vision.NormalizeObjects(objects, opts)
	res.Provider = vision.ProviderAzure
	return res, nil
}

type faceResponse []struct {
	FaceID        string `json:"faceId"`
	FaceRectangle struct {
		Top    int `json:"top"`
		Left   int `json:"left"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"faceRectangle"`
	FaceLandmarks  map[string]models.Point `json:"faceLandmarks"`
	FaceAttributes struct {
		Age         *float64           `json:"age"`
		Gender      string             `json:"gender"`
		Smile       *float64           `json:"smile"`
		Emotion     map[string]float64 `json:"emotion"`
		Glasses     string             `json:"glasses"`
		FacialHair  map[string]float64 `json:"facialHair"`
		Accessories []struct {
			Type       string  `json:"type"`
			Confidence float64 `json:"confidence"`
		} `json:"accessories"`
	} `json:"faceAttributes"`
}

// DetectFaces implements vision.FaceDetector against the Face API endpoint
func (c *Client) DetectFaces(ctx context.Context, img vision.Image, opts vision.Options) (*models.FaceDetectionResult, error) {
	landmarks := opts.ReturnLandmarks()
	params := map[string]string{
		"returnFaceId":         "true",
		"returnFaceLandmarks":  fmt.Sprintf("%t", landmarks),
		"returnFaceAttributes": faceAttributes,
	}

	var data faceResponse
	url := c.faceEndpoint + "/face/v1.0/detect"
	if _, err := c.post(ctx, vision.ProviderAzureFace, "detect_faces", url, params, img.Bytes, &data); err != nil {
		return nil, err
	}

	faces := make([]models.Face, 0, len(data))
	for _, f := range data {
		face := models.Face{
			FaceID: f.FaceID,
			BoundingBox: models.BoundingBox{
				X:      float64(f.FaceRectangle.Left),
				Y:      float64(f.FaceRectangle.Top),
				Width:  float64(f.FaceRectangle.Width),
				Height: float64(f.FaceRectangle.Height),
				Unit:   models.UnitPixel,
			},
			Attributes: faceAttributeMap(f.FaceAttributes.Age, f.FaceAttributes.Gender, f.FaceAttributes.Smile,
				f.FaceAttributes.Emotion, f.FaceAttributes.Glasses, f.FaceAttributes.FacialHair),
		}
		if len(f.FaceAttributes.Accessories) > 0 {
			accessories := make([]map[string]interface{}, 0, len(f.FaceAttributes.Accessories))
			for _, a := range f.FaceAttributes.Accessories {
				accessories = append(accessories, map[string]interface{}{
					"type":       a.Type,
					"confidence": vision.NormalizeConfidence(a.Confidence, vision.ScaleUnit),
				})
			}
			face.Attributes["accessories"] = accessories
		}
		if landmarks {
			face.Landmarks = flattenLandmarks(f.FaceLandmarks)
		}
		faces = append(faces, face)
	}

	return &models.FaceDetectionResult{
		Faces:      faces,
		TotalFaces: len(faces),
		Provider:   vision.ProviderAzureFace,
	}, nil
}

func faceAttributeMap(age *float64, gender string, smile *float64, emotion map[string]float64, glasses string, facialHair map[string]float64) map[string]interface{} {
	attrs := map[string]interface{}{}
	if age != nil {
		attrs["age"] = *age
	}
	if gender != "" {
		attrs["gender"] = strings.ToLower(gender)
	}
	if smile != nil {
		attrs["smile"] = vision.Round2(*smile)
	}
	if len(emotion) > 0 {
		attrs["emotion"] = roundScores(emotion)
	}
	if glasses != "" {
		attrs["glasses"] = vision.SnakeCase(glasses)
	}
	if len(facialHair) > 0 {
		attrs["facial_hair"] = roundScores(facialHair)
	}
	return attrs
}

func roundScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[vision.SnakeCase(k)] = vision.Round2(v)
	}
	return out
}

// flattenLandmarks orders landmarks by name so output is stable
func flattenLandmarks(in map[string]models.Point) []models.Landmark {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.Landmark, 0, len(in))
	for _, name := range names {
		p := in[name]
		out = append(out, models.Landmark{Type: vision.SnakeCase(name), X: p.X, Y: p.Y})
	}
	return out
}

// ClassifyImage implements vision.ImageClassifier
func (c *Client) ClassifyImage(ctx context.Context, img vision.Image, opts vision.Options) (*models.ClassificationResult, error) {
	data, err := c.analyze(ctx, "classify_image", img, map[string]string{
		"visualFeatures": "Categories,Tags",
		"language":       opts.Language(),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]models.Label, 0, len(data.Tags))
	for _, t := range data.Tags {
		labels = append(labels, models.Label{Name: t.Name, Confidence: vision.NormalizeConfidence(t.Confidence, vision.ScaleUnit)})
	}
	categories := make([]models.Label, 0, len(data.Categories))
	for _, cat := range data.Categories {
		categories = append(categories, models.Label{Name: cat.Name, Confidence: vision.NormalizeConfidence(cat.Score, vision.ScaleUnit)})
	}
	vision.SortLabels(labels)
	vision.SortLabels(categories)
	labels = vision.Truncate(labels, opts.MaxResults())

	return &models.ClassificationResult{
		Labels:          labels,
		Categories:      categories,
		PrimaryLabel:    vision.PrimaryName(labels),
		PrimaryCategory: vision.PrimaryName(categories),
		Provider:        vision.ProviderAzure,
	}, nil
}

// AnalyzeColors implements vision.ColorAnalyzer
func (c *Client) AnalyzeColors(ctx context.Context, img vision.Image, _ vision.Options) (*models.ColorAnalysisResult, error) {
	data, err := c.analyze(ctx, "analyze_colors", img, map[string]string{"visualFeatures": "Color"})
	if err != nil {
		return nil, err
	}

	swatches := make([]models.ColorSwatch, 0, len(data.Color.DominantColors))
	for _, name := range data.Color.DominantColors {
		swatches = append(swatches, models.ColorSwatch{Name: strings.ToLower(name)})
	}

	res := &models.ColorAnalysisResult{
		DominantColors:     swatches,
		DominantForeground: strings.ToLower(data.Color.DominantColorForeground),
		DominantBackground: strings.ToLower(data.Color.DominantColorBackground),
		IsBlackAndWhite:    vision.BoolPtr(data.Color.IsBWImg),
		Provider:           vision.ProviderAzure,
	}
	if data.Color.AccentColor != "" {
		res.AccentColor = "#" + strings.ToUpper(strings.TrimPrefix(data.Color.AccentColor, "#"))
		res.Palette = []string{res.AccentColor}
	}
	return res, nil
}

// AssessQuality implements vision.QualityAssessor
func (c *Client) AssessQuality(ctx context.Context, img vision.Image, _ vision.Options) (*models.QualityAssessmentResult, error) {
	data, err := c.analyze(ctx, "assess_quality", img, map[string]string{"visualFeatures": "Description,ImageType"})
	if err != nil {
		return nil, err
	}

	signals := validation.QualitySignals{
		IsClipArt:     vision.BoolPtr(data.ImageType.ClipArtType > 0),
		IsLineDrawing: vision.BoolPtr(data.ImageType.LineDrawingType > 0),
	}
	res := vision.AssessQuality(img.Metadata, signals, c.quality)
	res.Signals = map[string]float64{
		"clip_art_type":     float64(data.ImageType.ClipArtType),
		"line_drawing_type": float64(data.ImageType.LineDrawingType),
	}
	if len(data.Description.Captions) > 0 {
		res.Signals["caption_confidence"] = vision.Round2(data.Description.Captions[0].Confidence)
	}
	res.Provider = vision.ProviderAzure
	return res, nil
}
