package repository

import (
	"context"

	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

// Source is the image reference carried by a tool request. Exactly one of
// Path and Data must be set.
type Source struct {
	Path string
	Data string
}

// LoadedImage is a decoded-header image ready for analysis. Bytes is nil for
// remote URLs, which are never downloaded.
type LoadedImage struct {
	Bytes    []byte
	Metadata models.ImageMetadata
	Kind     validation.SourceKind
	// Inline is true when the bytes came from image_data
	Inline bool
	// Label is reported as image_source in the response
	Label string
}

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// Load resolves src to bytes plus header metadata
	Load(ctx context.Context, src Source) (*LoadedImage, error)

	// DecodeMetadata reads format, mode and dimensions from raw image bytes
	DecodeMetadata(data []byte) (models.ImageMetadata, error)
}
