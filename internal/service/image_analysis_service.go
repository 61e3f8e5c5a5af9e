package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/factory"
	"go-vision-analyzer/internal/logger"
	"go-vision-analyzer/internal/observer"
	"go-vision-analyzer/internal/repository"
	"go-vision-analyzer/internal/strategy"
	"go-vision-analyzer/internal/tracing"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/mock"
	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

// MissingSourceMessage is returned when a request names no image at all
const MissingSourceMessage = "Either image_path or image_data must be provided"

// LiveURLMessage is returned when a remote URL is sent to a real vendor
const LiveURLMessage = "URLs not yet supported for live analysis"

// ImageAnalysisService is the single entry point of the analysis layer. It
// never panics and never returns a Go error: every failure is reported in
// the response.
type ImageAnalysisService interface {
	AnalyzeImage(ctx context.Context, req models.ToolRequest) *models.ToolResponse
}

// Settings are the service-level defaults a request can override
type Settings struct {
	DefaultVision   models.VisionConfig
	AnalysisTimeout time.Duration
}

type imageAnalysisService struct {
	imageRepo repository.ImageRepository
	providers factory.ProviderFactory
	router    *strategy.Router
	publisher observer.Subject
	mock      vision.Provider
	settings  Settings
	newID     func() string
}

// NewImageAnalysisService creates a new image analysis service. publisher may be nil.
func NewImageAnalysisService(
	imageRepository repository.ImageRepository,
	providerFactory factory.ProviderFactory,
	router *strategy.Router,
	publisher observer.Subject,
	settings Settings,
) ImageAnalysisService {
	return &imageAnalysisService{
		imageRepo: imageRepository,
		providers: providerFactory,
		router:    router,
		publisher: publisher,
		mock:      mock.New(),
		settings:  settings,
		newID:     uuid.NewString,
	}
}

// call carries the per-request state used for events and the response
type call struct {
	requestID    string
	analysisType string
	provider     string
	imageSource  string
	started      time.Time
}

// AnalyzeImage validates req, loads the image, selects mock or live mode once
// and routes the analysis. All errors are folded into the response.
func (s *imageAnalysisService) AnalyzeImage(ctx context.Context, req models.ToolRequest) (resp *models.ToolResponse) {
	// analysisType and provider stay empty until they parse; they label metrics
	c := &call{
		requestID: s.newID(),
		started:   time.Now(),
	}

	ctx, span := tracing.StartAnalysisSpan(ctx, c.requestID, strings.TrimSpace(req.AnalysisType))
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnexpectedError("Unexpected error during image analysis", fmt.Errorf("panic: %v", r))
			logger.ForAnalysis(c.requestID, c.analysisType, c.provider).WithField("panic", r).Error("Recovered from panic in analysis")
			resp = s.fail(ctx, c, err)
		}
		tracing.End(span, err)
	}()

	s.notify(ctx, c, observer.AnalysisEvent{EventType: observer.AnalysisStarted})

	var result models.AnalysisResult
	var meta models.ImageMetadata
	result, meta, err = s.analyze(ctx, c, req)
	if err != nil {
		return s.fail(ctx, c, err)
	}

	elapsed := time.Since(c.started)
	s.notify(ctx, c, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Success:        true,
		ProcessingTime: elapsed,
	})
	return &models.ToolResponse{
		Success:      true,
		AnalysisType: c.analysisType,
		ImageSource:  c.imageSource,
		Results:      result,
		Metadata:     &meta,
		Provider:     c.provider,
		RequestID:    c.requestID,
	}
}

func (s *imageAnalysisService) analyze(ctx context.Context, c *call, req models.ToolRequest) (models.AnalysisResult, models.ImageMetadata, error) {
	src := repository.Source{Path: req.ImagePath, Data: req.ImageData}
	if strings.TrimSpace(src.Path) == "" && strings.TrimSpace(src.Data) == "" {
		return nil, models.ImageMetadata{}, apperrors.NewInputError(MissingSourceMessage)
	}

	analysisType, err := vision.ParseAnalysisType(req.AnalysisType)
	if err != nil {
		return nil, models.ImageMetadata{}, err
	}
	c.analysisType = string(analysisType)

	cfg := s.settings.DefaultVision.Resolve(req.ToolConfig.VisionAI)
	providerType, err := factory.ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, models.ImageMetadata{}, err
	}
	c.provider = string(providerType)
	live := providerType != factory.MockProvider

	if s.settings.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.AnalysisTimeout)
		defer cancel()
	}

	provider := s.mock
	if live {
		if provider, err = s.providers.CreateProvider(ctx, cfg); err != nil {
			return nil, models.ImageMetadata{}, err
		}
	}

	loaded, err := s.imageRepo.Load(ctx, src)
	if err != nil {
		s.notify(ctx, c, observer.AnalysisEvent{EventType: observer.ImageLoadFailed, ErrorType: string(apperrors.TypeOf(err)), ErrorMessage: apperrors.UserMessage(err)})
		return nil, models.ImageMetadata{}, err
	}
	c.imageSource = loaded.Label
	s.notify(ctx, c, observer.AnalysisEvent{
		EventType: observer.ImageLoaded,
		Metadata: map[string]interface{}{
			"format": loaded.Metadata.Format,
			"width":  loaded.Metadata.Width,
			"height": loaded.Metadata.Height,
			"source": loaded.Kind.String(),
		},
	})

	img := vision.Image{Metadata: loaded.Metadata}
	if live {
		if loaded.Kind == validation.SourceRemote {
			return nil, loaded.Metadata, apperrors.NewUnsupportedSourceError(LiveURLMessage)
		}
		img.Bytes = loaded.Bytes
	}

	logger.ForAnalysis(c.requestID, c.analysisType, c.provider).WithFields(logrus.Fields{
		"live":   live,
		"source": loaded.Kind.String(),
	}).Debug("Dispatching analysis")

	opts := vision.Options(req.Options)
	if opts == nil {
		opts = vision.Options{}
	}
	result, err := s.router.Route(ctx, provider, analysisType, img, opts)
	if err != nil {
		return nil, loaded.Metadata, err
	}
	return result, loaded.Metadata, nil
}

func (s *imageAnalysisService) fail(ctx context.Context, c *call, err error) *models.ToolResponse {
	errType := apperrors.TypeOf(err)
	message := apperrors.UserMessage(err)
	if errType == apperrors.ErrorTypeUnexpected && !apperrors.IsType(err, apperrors.ErrorTypeUnexpected) {
		message = fmt.Sprintf("Unexpected error during image analysis: %v", err)
	}

	s.notify(ctx, c, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		ProcessingTime: time.Since(c.started),
		ErrorType:      string(errType),
		ErrorMessage:   message,
	})
	return &models.ToolResponse{
		Success:   false,
		Error:     message,
		ErrorType: string(errType),
		Provider:  c.provider,
		RequestID: c.requestID,
	}
}

func (s *imageAnalysisService) notify(ctx context.Context, c *call, event observer.AnalysisEvent) {
	if s.publisher == nil {
		return
	}
	event.RequestID = c.requestID
	event.AnalysisType = c.analysisType
	event.Provider = c.provider
	event.ImageSource = c.imageSource
	s.publisher.NotifyObservers(context.WithoutCancel(ctx), event)
}
