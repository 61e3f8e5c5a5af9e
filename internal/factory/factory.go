package factory

import (
	"context"
	"fmt"
	"strings"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/storage"
	"go-vision-analyzer/internal/vision"
	"go-vision-analyzer/internal/vision/aws"
	"go-vision-analyzer/internal/vision/azure"
	"go-vision-analyzer/internal/vision/google"
	"go-vision-analyzer/internal/vision/mock"
	"go-vision-analyzer/pkg/models"
)

// ProviderType identifies a vision backend in tool_config.vision_ai.provider
type ProviderType string

const (
	// MockProvider returns synthetic results without any network access
	MockProvider ProviderType = "mock"
	// AzureProvider is Azure Computer Vision plus the Face API
	AzureProvider ProviderType = "azure"
	// AWSProvider is Amazon Rekognition
	AWSProvider ProviderType = "aws"
	// GoogleProvider is Google Cloud Vision
	GoogleProvider ProviderType = "google"
)

// ParseProviderType normalizes a configured provider name. Empty means mock.
func ParseProviderType(s string) (ProviderType, error) {
	switch p := ProviderType(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MockProvider, nil
	case MockProvider, AzureProvider, AWSProvider, GoogleProvider:
		return p, nil
	}
	return "", apperrors.NewConfigError(
		fmt.Sprintf("Unknown vision provider: %s (expected mock, azure, aws or google)", s), nil)
}

// ProviderFactory builds vision providers from configuration
type ProviderFactory interface {
	CreateProvider(ctx context.Context, cfg models.VisionConfig) (vision.Provider, error)
}

type providerFactory struct {
	azureOpts []azure.Option
	awsOpts   []aws.Option
}

// FactoryOption customizes adapter construction, mainly for tests
type FactoryOption func(*providerFactory)

// WithAzureOptions forwards opts to azure.New
func WithAzureOptions(opts ...azure.Option) FactoryOption {
	return func(f *providerFactory) { f.azureOpts = append(f.azureOpts, opts...) }
}

// WithAWSOptions forwards opts to aws.New
func WithAWSOptions(opts ...aws.Option) FactoryOption {
	return func(f *providerFactory) { f.awsOpts = append(f.awsOpts, opts...) }
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(opts ...FactoryOption) ProviderFactory {
	f := &providerFactory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateProvider maps cfg.Provider to an adapter. Each adapter validates its
// own credentials before any network access.
func (f *providerFactory) CreateProvider(ctx context.Context, cfg models.VisionConfig) (vision.Provider, error) {
	providerType, err := ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var p vision.Provider
	switch providerType {
	case AzureProvider:
		p, err = azure.New(cfg, f.azureOpts...)
	case AWSProvider:
		p, err = aws.New(cfg, f.awsOpts...)
	case GoogleProvider:
		p, err = google.New(ctx, cfg)
	default:
		p = mock.New()
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// StorageFactory creates blob sources for azblob:// image paths
type StorageFactory interface {
	CreateBlobSource(cfg storage.BlobConfig) (storage.BlobSource, error)
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateBlobSource returns nil without error when no account is configured
func (f *storageFactory) CreateBlobSource(cfg storage.BlobConfig) (storage.BlobSource, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return storage.NewAzureBlobSource(cfg)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ProviderFactory ProviderFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(opts ...FactoryOption) *ComponentFactory {
	return &ComponentFactory{
		ProviderFactory: NewProviderFactory(opts...),
		StorageFactory:  NewStorageFactory(),
	}
}
