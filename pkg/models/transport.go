package models

import "time"

// VisionConfig selects and configures the analysis backend. It arrives either
// from service configuration or per call under tool_config.vision_ai.
type VisionConfig struct {
	Provider string `json:"provider" mapstructure:"provider"`

	AzureEndpoint     string `json:"azure_endpoint,omitempty" mapstructure:"azure_endpoint"`
	AzureAPIKey       string `json:"azure_api_key,omitempty" mapstructure:"azure_api_key"`
	AzureAPIVersion   string `json:"azure_api_version,omitempty" mapstructure:"azure_api_version"`
	AzureFaceEndpoint string `json:"azure_face_endpoint,omitempty" mapstructure:"azure_face_endpoint"`

	AWSRegion          string `json:"aws_region,omitempty" mapstructure:"aws_region"`
	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty" mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty" mapstructure:"aws_secret_access_key"`
	AWSSessionToken    string `json:"aws_session_token,omitempty" mapstructure:"aws_session_token"`
	AWSEndpoint        string `json:"aws_endpoint,omitempty" mapstructure:"aws_endpoint"`

	GoogleAPIKey    string `json:"google_api_key,omitempty" mapstructure:"google_api_key"`
	GoogleProjectID string `json:"google_project_id,omitempty" mapstructure:"google_project_id"`
	GoogleEndpoint  string `json:"google_endpoint,omitempty" mapstructure:"google_endpoint"`

	// Timeout bounds every single vendor request
	Timeout time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`
}

// IsZero reports whether no field was supplied
func (c VisionConfig) IsZero() bool {
	return c == VisionConfig{}
}

// Resolve picks the configuration for one call. A request block with any
// field set replaces c as a whole; only Timeout falls back to c.
func (c VisionConfig) Resolve(request VisionConfig) VisionConfig {
	if request.IsZero() {
		return c
	}
	resolved := request
	if resolved.Timeout <= 0 {
		resolved.Timeout = c.Timeout
	}
	return resolved
}

// ToolConfig is the per-invocation configuration passed by the orchestration platform
type ToolConfig struct {
	VisionAI VisionConfig `json:"vision_ai"`
}

// ToolRequest is the inbound tool-invocation contract
type ToolRequest struct {
	ImagePath    string                 `json:"image_path,omitempty"`
	ImageData    string                 `json:"image_data,omitempty"`
	AnalysisType string                 `json:"analysis_type"`
	Options      map[string]interface{} `json:"options,omitempty"`
	ToolConfig   ToolConfig             `json:"tool_config"`
}

// ToolResponse is the outbound tool-invocation contract. On failure only
// Success, Error, ErrorType and Provider are set.
type ToolResponse struct {
	Success      bool           `json:"success"`
	AnalysisType string         `json:"analysis_type,omitempty"`
	ImageSource  string         `json:"image_source,omitempty"`
	Results      AnalysisResult `json:"results,omitempty"`
	Metadata     *ImageMetadata `json:"metadata,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorType    string         `json:"error_type,omitempty"`
	Provider     string         `json:"provider,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
}

// ErrorResponse represents an HTTP-level error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
