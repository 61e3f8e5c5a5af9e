package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	apperrors "go-vision-analyzer/internal/errors"
)

// DefaultMaxBlobBytes caps a single blob download
const DefaultMaxBlobBytes int64 = 20 * 1024 * 1024

// BlobConfig holds the shared-key account used for azblob:// image paths
type BlobConfig struct {
	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
	// ServiceURL overrides https://<account>.blob.core.windows.net, e.g. for Azurite
	ServiceURL string `mapstructure:"service_url"`
	MaxBytes   int64  `mapstructure:"max_bytes"`
}

// Enabled reports whether an account is configured
func (c BlobConfig) Enabled() bool {
	return strings.TrimSpace(c.AccountName) != "" && strings.TrimSpace(c.AccountKey) != ""
}

// BlobSource reads raw image bytes from blob storage
type BlobSource interface {
	GetBytes(ctx context.Context, container, blob string) ([]byte, error)
}

type azureBlobSource struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureBlobSource builds a shared-key client. No request is made.
func NewAzureBlobSource(cfg BlobConfig) (BlobSource, error) {
	if !cfg.Enabled() {
		return nil, apperrors.NewConfigError("Azure storage account name and key are required", nil)
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, apperrors.NewConfigError("Invalid Azure storage credentials", err)
	}

	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(strings.TrimRight(serviceURL, "/"), credential, nil)
	if err != nil {
		return nil, apperrors.NewConfigError("Failed to create Azure storage client", err)
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBlobBytes
	}
	return &azureBlobSource{client: client, maxBytes: maxBytes}, nil
}

func (s *azureBlobSource) GetBytes(ctx context.Context, container, blob string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		if ctxErr := apperrors.FromContext(err, "Blob download aborted"); ctxErr != nil {
			return nil, ctxErr
		}
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Image blob not found: %s/%s", container, blob), err)
		}
		return nil, apperrors.NewInputError(fmt.Sprintf("Failed to download blob %s/%s: %v", container, blob, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("Failed to read blob %s/%s: %v", container, blob, err))
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewInputError(fmt.Sprintf("Blob %s/%s exceeds %d bytes", container, blob, s.maxBytes))
	}
	return data, nil
}
