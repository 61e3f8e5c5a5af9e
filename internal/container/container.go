package container

import (
	"fmt"
	"net/http"

	"go-vision-analyzer/internal/config"
	"go-vision-analyzer/internal/factory"
	"go-vision-analyzer/internal/logger"
	"go-vision-analyzer/internal/observer"
	"go-vision-analyzer/internal/repository"
	"go-vision-analyzer/internal/service"
	"go-vision-analyzer/internal/storage"
	"go-vision-analyzer/internal/strategy"
	"go-vision-analyzer/internal/transport"
	"go-vision-analyzer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	blobSource           storage.BlobSource
	imageRepository      repository.ImageRepository
	publisher            observer.Subject
	metrics              *observer.MetricsObserver
	imageAnalysisService service.ImageAnalysisService
	handler              http.Handler
}

// NewContainer builds the dependency graph from cfg
func NewContainer(cfg *config.Config, opts ...factory.FactoryOption) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger.SetLevel(cfg.LogLevel)

	components := factory.NewComponentFactory(opts...)
	blobSource, err := components.StorageFactory.CreateBlobSource(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob source: %w", err)
	}

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	imageRepository := repository.NewImageRepository(urlValidator(cfg.AllowedURLHosts), blobSource)
	imageAnalysisService := service.NewImageAnalysisService(
		imageRepository,
		components.ProviderFactory,
		strategy.NewRouter(),
		publisher,
		service.Settings{
			DefaultVision:   cfg.Vision,
			AnalysisTimeout: cfg.AnalysisTimeout,
		},
	)
	handler := transport.NewHandler(imageAnalysisService, metrics, cfg)

	return &Container{
		config:               cfg,
		blobSource:           blobSource,
		imageRepository:      imageRepository,
		publisher:            publisher,
		metrics:              metrics,
		imageAnalysisService: imageAnalysisService,
		handler:              handler,
	}, nil
}

func urlValidator(hosts []string) *validation.URLValidator {
	if len(hosts) == 0 {
		return validation.NewURLValidator()
	}
	return validation.NewURLValidatorWithOptions([]string{"http", "https"}, hosts)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis facade
func (c *Container) Service() service.ImageAnalysisService {
	return c.imageAnalysisService
}
