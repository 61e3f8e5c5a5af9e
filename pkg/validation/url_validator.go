package validation

import (
	"net/url"
	"strings"

	apperrors "go-vision-analyzer/internal/errors"
)

// SourceKind classifies an image_path value
type SourceKind int

const (
	// SourceLocal is a filesystem path
	SourceLocal SourceKind = iota
	// SourceRemote is an http(s) URL
	SourceRemote
	// SourceBlob is an azblob://container/blob reference
	SourceBlob
)

// BlobScheme is the URL scheme for Azure blob storage sources
const BlobScheme = "azblob"

func (k SourceKind) String() string {
	switch k {
	case SourceRemote:
		return "url"
	case SourceBlob:
		return "blob"
	default:
		return "local"
	}
}

// URLValidator handles URL validation logic
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// Classify decides whether path is a local file, a remote URL or a blob
// reference. Anything without a recognized scheme is treated as local.
func (v *URLValidator) Classify(path string) SourceKind {
	trimmed := strings.TrimSpace(path)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, BlobScheme+"://"):
		return SourceBlob
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return SourceRemote
	}
	return SourceLocal
}

// ValidateImageURL validates if the provided URL is acceptable for image processing
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if len(v.allowedHosts) > 0 && !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

// ParseBlobRef splits azblob://container/path/to/blob into container and blob name
func (v *URLValidator) ParseBlobRef(ref string) (container, blob string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", "", apperrors.NewValidationError("Invalid blob reference", err)
	}
	if !strings.EqualFold(parsed.Scheme, BlobScheme) {
		return "", "", apperrors.NewValidationError("Blob reference must use the azblob scheme", nil)
	}
	container = parsed.Host
	blob = strings.TrimPrefix(parsed.Path, "/")
	if container == "" || blob == "" {
		return "", "", apperrors.NewValidationError("Blob reference must name a container and a blob", nil)
	}
	return container, blob, nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
