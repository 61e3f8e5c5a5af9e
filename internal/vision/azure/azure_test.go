package azure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/poll"
	"go-vision-analyzer/pkg/models"
)

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

var testImage = vision.Image{
	Bytes:    []byte("fake-jpeg-bytes"),
	Metadata: models.ImageMetadata{Format: "JPEG", ColorMode: "RGB", Width: 1024, Height: 768, SizeBytes: 204800},
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := New(models.VisionConfig{
		Provider:        "azure",
		AzureEndpoint:   server.URL + "/",
		AzureAPIKey:     "secret",
		AzureAPIVersion: "3.2",
	}, WithPoller(&poll.Poller{
		Interval:    time.Second,
		MaxAttempts: poll.DefaultMaxAttempts,
		Clock:       instantClock{},
		Provider:    vision.ProviderAzure,
	}))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_MissingCredentialsMakesNoCalls(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	_, err := New(models.VisionConfig{Provider: "azure", AzureEndpoint: server.URL})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
	assert.Equal(t, int32(0), calls.Load())
}

func TestDetectObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/vision/v3.2/detect", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "fake-jpeg-bytes", string(body))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"objects": []map[string]interface{}{
				{"object": "cup", "confidence": 0.41, "rectangle": map[string]int{"x": 1, "y": 2, "w": 3, "h": 4}},
				{"object": "dog", "confidence": 0.732, "rectangle": map[string]int{"x": 10, "y": 20, "w": 30, "h": 40}},
				{"object": "person", "confidence": 0.914, "rectangle": map[string]int{"x": 5, "y": 6, "w": 7, "h": 8}},
			},
		})
	}))
	defer server.Close()

	res, err := newTestClient(t, server).DetectObjects(context.Background(), testImage, vision.Options{})

	require.NoError(t, err)
	require.Len(t, res.Objects, 2)
	assert.Equal(t, "person", res.Objects[0].Label)
	assert.Equal(t, 0.91, res.Objects[0].Confidence)
	assert.Equal(t, "dog", res.Objects[1].Label)
	assert.Equal(t, models.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40, Unit: models.UnitPixel}, res.Objects[1].BoundingBox)
	assert.Equal(t, 2, res.TotalObjects)
	assert.Equal(t, vision.ProviderAzure, res.Provider)
}

func TestVendorErrorCarriesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": map[string]string{"code": "401", "message": "Access denied due to invalid subscription key."},
		})
	}))
	defer server.Close()

	_, err := newTestClient(t, server).AnalyzeGeneral(context.Background(), testImage, vision.Options{})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeVendor, appErr.Type)
	assert.Equal(t, http.StatusUnauthorized, appErr.VendorStatus)
	assert.Equal(t, vision.ProviderAzure, appErr.Provider)
	assert.Contains(t, apperrors.UserMessage(err), "invalid subscription key")
}

func readServer(t *testing.T, succeedOn int32, polls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/vision/v3.2/read/analyze":
			w.Header().Set("Operation-Location", "http://"+r.Host+"/vision/v3.2/read/analyzeResults/op-1")
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/vision/v3.2/read/analyzeResults/op-1":
			assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
			n := polls.Add(1)
			if succeedOn == 0 || n < succeedOn {
				writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "succeeded",
				"analyzeResult": map[string]interface{}{
					"readResults": []map[string]interface{}{{
						"page": 1,
						"lines": []map[string]interface{}{
							{
								"text":        "INVOICE",
								"boundingBox": []float64{10, 10, 110, 10, 110, 40, 10, 40},
								"words":       []map[string]interface{}{{"text": "INVOICE", "confidence": 0.99}},
							},
							{
								"text":        "Total 42",
								"boundingBox": []float64{10, 50, 90, 50, 90, 70, 10, 70},
								"words": []map[string]interface{}{
									{"text": "Total", "confidence": 0.9},
									{"text": "42", "confidence": 0.8},
								},
							},
						},
					}},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestExtractText_PollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32
	server := readServer(t, 3, &polls)
	defer server.Close()

	res, err := newTestClient(t, server).ExtractText(context.Background(), testImage, vision.Options{})

	require.NoError(t, err)
	assert.Equal(t, int32(3), polls.Load())
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "INVOICE\nTotal 42", res.FullText)
	assert.Equal(t, 2, res.TotalBlocks)
	assert.Equal(t, 0.99, res.Blocks[0].Confidence)
	assert.Equal(t, 0.85, res.Blocks[1].Confidence)
	assert.Equal(t, 100.0, res.Blocks[0].BoundingBox.Width)
	assert.Len(t, res.Blocks[0].BoundingBox.Polygon, 4)
	assert.Equal(t, "en", res.Language)
}

func TestExtractText_TimesOut(t *testing.T) {
	var polls atomic.Int32
	server := readServer(t, 0, &polls)
	defer server.Close()

	_, err := newTestClient(t, server).ExtractText(context.Background(), testImage, vision.Options{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeOperationTimeout))
	assert.Equal(t, int32(poll.DefaultMaxAttempts), polls.Load())
}

func TestExtractText_MissingOperationLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).ExtractText(context.Background(), testImage, vision.Options{})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeVendor))
}

func TestDetectFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/face/v1.0/detect", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("returnFaceId"))
		assert.Equal(t, "true", r.URL.Query().Get("returnFaceLandmarks"))

		writeJSON(w, http.StatusOK, []map[string]interface{}{{
			"faceId":        "f-1",
			"faceRectangle": map[string]int{"top": 20, "left": 10, "width": 100, "height": 120},
			"faceLandmarks": map[string]interface{}{
				"pupilLeft":  map[string]float64{"x": 30, "y": 50},
				"noseTip":    map[string]float64{"x": 60, "y": 80},
				"pupilRight": map[string]float64{"x": 90, "y": 50},
			},
			"faceAttributes": map[string]interface{}{
				"age":        31.0,
				"gender":     "female",
				"smile":      0.873,
				"glasses":    "ReadingGlasses",
				"emotion":    map[string]float64{"happiness": 0.871, "neutral": 0.129},
				"facialHair": map[string]float64{"moustache": 0, "beard": 0.1, "sideburns": 0},
			},
		}})
	}))
	defer server.Close()

	res, err := newTestClient(t, server).DetectFaces(context.Background(), testImage, vision.Options{})

	require.NoError(t, err)
	require.Len(t, res.Faces, 1)
	face := res.Faces[0]
	assert.Equal(t, "f-1", face.FaceID)
	assert.Nil(t, face.Confidence)
	assert.Equal(t, 10.0, face.BoundingBox.X)
	assert.Equal(t, 20.0, face.BoundingBox.Y)
	assert.Equal(t, "reading_glasses", face.Attributes["glasses"])
	assert.Equal(t, 0.87, face.Attributes["smile"])
	assert.Contains(t, face.Attributes, "facial_hair")
	require.Len(t, face.Landmarks, 3)
	assert.Equal(t, "nose_tip", face.Landmarks[0].Type)
	assert.Equal(t, "pupil_left", face.Landmarks[1].Type)
	assert.Equal(t, vision.ProviderAzureFace, res.Provider)
}

func TestDetectFaces_UsesSeparateFaceEndpoint(t *testing.T) {
	var faceCalls atomic.Int32
	face := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		faceCalls.Add(1)
		assert.Equal(t, "false", r.URL.Query().Get("returnFaceLandmarks"))
		writeJSON(w, http.StatusOK, []interface{}{})
	}))
	defer face.Close()

	c, err := New(models.VisionConfig{
		AzureEndpoint:     "http://127.0.0.1:1",
		AzureFaceEndpoint: face.URL,
		AzureAPIKey:       "secret",
	})
	require.NoError(t, err)

	res, err := c.DetectFaces(context.Background(), testImage, vision.Options{vision.OptReturnLandmarks: false})

	require.NoError(t, err)
	assert.Equal(t, int32(1), faceCalls.Load())
	assert.Empty(t, res.Faces)
	assert.Equal(t, 0, res.TotalFaces)
}

func TestClassifyImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Categories,Tags", r.URL.Query().Get("visualFeatures"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"categories": []map[string]interface{}{
				{"name": "outdoor_", "score": 0.2},
				{"name": "outdoor_mountain", "score": 0.83},
			},
			"tags": []map[string]interface{}{
				{"name": "sky", "confidence": 0.7},
				{"name": "mountain", "confidence": 0.991},
				{"name": "grass", "confidence": 0.5},
			},
		})
	}))
	defer server.Close()

	res, err := newTestClient(t, server).ClassifyImage(context.Background(), testImage, vision.Options{vision.OptMaxResults: 2})

	require.NoError(t, err)
	require.Len(t, res.Labels, 2)
	assert.Equal(t, "mountain", res.PrimaryLabel)
	assert.Equal(t, 0.99, res.Labels[0].Confidence)
	assert.Equal(t, "outdoor_mountain", res.PrimaryCategory)
	assert.Len(t, res.Categories, 2)
}

func TestAnalyzeGeneralAndQuality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"description": map[string]interface{}{
				"tags":     []string{"outdoor", "mountain"},
				"captions": []map[string]interface{}{{"text": "a mountain range", "confidence": 0.912}},
			},
			"metadata":  map[string]interface{}{"width": 1024, "height": 768, "format": "Jpeg"},
			"imageType": map[string]int{"clipArtType": 0, "lineDrawingType": 1},
		})
	}))
	defer server.Close()
	c := newTestClient(t, server)

	general, err := c.AnalyzeGeneral(context.Background(), testImage, vision.Options{})
	require.NoError(t, err)
	assert.Equal(t, "a mountain range", general.Description)
	assert.Equal(t, []string{"outdoor", "mountain"}, general.Tags)
	assert.Equal(t, 1.33, general.AspectRatio)
	require.NotNil(t, general.IsLineDrawing)
	assert.True(t, *general.IsLineDrawing)
	assert.False(t, *general.IsClipArt)

	quality, err := c.AssessQuality(context.Background(), testImage, vision.Options{})
	require.NoError(t, err)
	assert.Equal(t, "1024x768", quality.Resolution)
	assert.Equal(t, 0.79, quality.Megapixels)
	assert.Equal(t, 200.0, quality.SizeKB)
	assert.True(t, quality.IsSuitableForAnalysis)
	assert.Equal(t, 0.91, quality.Signals["caption_confidence"])
}

func TestAnalyzeColors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Color", r.URL.Query().Get("visualFeatures"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"color": map[string]interface{}{
				"dominantColorForeground": "Black",
				"dominantColorBackground": "White",
				"dominantColors":          []string{"White", "Black"},
				"accentColor":             "a3b2c1",
				"isBwImg":                 true,
			},
		})
	}))
	defer server.Close()

	res, err := newTestClient(t, server).AnalyzeColors(context.Background(), testImage, vision.Options{})

	require.NoError(t, err)
	assert.Equal(t, "black", res.DominantForeground)
	assert.Equal(t, "#A3B2C1", res.AccentColor)
	require.NotNil(t, res.IsBlackAndWhite)
	assert.True(t, *res.IsBlackAndWhite)
	assert.Len(t, res.DominantColors, 2)
}

func TestCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server).DetectObjects(ctx, testImage, vision.Options{})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCanceled))
}
