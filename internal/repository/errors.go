package repository

import "errors"

var (
	// ErrEmptyImageData indicates inline data that decodes to zero bytes
	ErrEmptyImageData = errors.New("image data is empty")

	// ErrBlobStorageUnavailable indicates an azblob:// path with no storage account configured
	ErrBlobStorageUnavailable = errors.New("blob storage is not configured")
)
