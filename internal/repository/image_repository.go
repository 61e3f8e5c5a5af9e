package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "go-vision-analyzer/internal/errors"
	"go-vision-analyzer/internal/storage"
	"go-vision-analyzer/pkg/models"
	"go-vision-analyzer/pkg/validation"
)

// InlineSourceLabel is the image_source reported for image_data requests
const InlineSourceLabel = "base64_data"

// remotePlaceholder is reported for URLs, which are never downloaded
var remotePlaceholder = models.ImageMetadata{
	Format:    "JPEG",
	ColorMode: "RGB",
	Width:     1024,
	Height:    768,
	SizeBytes: 0,
}

// imageRepository loads images from inline data, the filesystem or blob storage
type imageRepository struct {
	urls  *validation.URLValidator
	blobs storage.BlobSource
}

// NewImageRepository creates a repository. blobs may be nil, in which case
// azblob:// paths are rejected.
func NewImageRepository(urls *validation.URLValidator, blobs storage.BlobSource) ImageRepository {
	if urls == nil {
		urls = validation.NewURLValidator()
	}
	return &imageRepository{urls: urls, blobs: blobs}
}

// Load resolves the single source in src
func (r *imageRepository) Load(ctx context.Context, src Source) (*LoadedImage, error) {
	hasPath := strings.TrimSpace(src.Path) != ""
	hasData := strings.TrimSpace(src.Data) != ""
	switch {
	case !hasPath && !hasData:
		return nil, apperrors.NewInputError("Either image_path or image_data must be provided")
	case hasPath && hasData:
		return nil, apperrors.NewInputError("Provide either image_path or image_data, not both")
	case hasData:
		return r.loadInline(src.Data)
	}

	path := strings.TrimSpace(src.Path)
	switch kind := r.urls.Classify(path); kind {
	case validation.SourceRemote:
		if err := r.urls.ValidateImageURL(path); err != nil {
			return nil, err
		}
		return &LoadedImage{Metadata: remotePlaceholder, Kind: kind, Label: path}, nil
	case validation.SourceBlob:
		return r.loadBlob(ctx, path)
	default:
		return r.loadFile(path)
	}
}

func (r *imageRepository) loadInline(data string) (*LoadedImage, error) {
	raw, err := DecodeBase64(data)
	if err != nil {
		return nil, apperrors.NewDecodeError("Failed to decode base64 image data", err)
	}
	meta, err := r.DecodeMetadata(raw)
	if err != nil {
		return nil, apperrors.NewDecodeError("Failed to decode base64 image data", err)
	}
	return &LoadedImage{Bytes: raw, Metadata: meta, Kind: validation.SourceLocal, Inline: true, Label: InlineSourceLabel}, nil
}

func (r *imageRepository) loadFile(path string) (*LoadedImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Image file not found: %s", path), err)
		}
		return nil, apperrors.NewInputError(fmt.Sprintf("Failed to load image: %v", err))
	}
	meta, err := r.DecodeMetadata(raw)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("Failed to load image: %v", err))
	}
	return &LoadedImage{Bytes: raw, Metadata: meta, Kind: validation.SourceLocal, Label: path}, nil
}

func (r *imageRepository) loadBlob(ctx context.Context, ref string) (*LoadedImage, error) {
	if r.blobs == nil {
		return nil, apperrors.NewUnsupportedSourceError(fmt.Sprintf("Cannot load %s: %v", ref, ErrBlobStorageUnavailable))
	}
	container, blob, err := r.urls.ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}
	raw, err := r.blobs.GetBytes(ctx, container, blob)
	if err != nil {
		return nil, err
	}
	meta, err := r.DecodeMetadata(raw)
	if err != nil {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("Blob %s is not a valid image", ref), err)
	}
	return &LoadedImage{Bytes: raw, Metadata: meta, Kind: validation.SourceBlob, Label: ref}, nil
}

// DecodeMetadata reads only the image header
func (r *imageRepository) DecodeMetadata(data []byte) (models.ImageMetadata, error) {
	if len(data) == 0 {
		return models.ImageMetadata{}, ErrEmptyImageData
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.ImageMetadata{}, err
	}
	return models.ImageMetadata{
		Format:    strings.ToUpper(format),
		ColorMode: colorMode(cfg.ColorModel),
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: int64(len(data)),
	}, nil
}

// DecodeBase64 strips an optional data-URL prefix and decodes the payload.
// Padded and unpadded standard encodings are accepted.
func DecodeBase64(data string) ([]byte, error) {
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.IndexByte(payload, ',')
		if idx < 0 {
			return nil, errors.New("data URL has no payload")
		}
		payload = payload[idx+1:]
	}
	payload = strings.Join(strings.Fields(payload), "")

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		if raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr != nil {
			return nil, err
		}
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImageData
	}
	return raw, nil
}

// colorMode names a color model the way image tooling usually reports it
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return "RGBA"
	}
	return "RGB"
}
