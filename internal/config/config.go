package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go-vision-analyzer/internal/storage"
	"go-vision-analyzer/pkg/models"
)

// Config is the service configuration. Every key can be overridden from the
// environment: nested keys use "_" for ".", so vision.azure_endpoint is read
// from VISION_AZURE_ENDPOINT.
type Config struct {
	Host               string        `mapstructure:"host"`
	Port               string        `mapstructure:"port"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	AnalysisTimeout    time.Duration `mapstructure:"analysis_timeout"`
	MaxRequestBodySize int64         `mapstructure:"max_request_body_size"`
	LogLevel           string        `mapstructure:"log_level"`
	// AllowedURLHosts restricts remote image_path hosts; empty allows any
	AllowedURLHosts []string `mapstructure:"allowed_url_hosts"`

	// Vision is the default backend; requests may override it per call
	Vision  models.VisionConfig `mapstructure:"vision"`
	Storage storage.BlobConfig  `mapstructure:"storage"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("analysis_timeout", 60*time.Second)
	v.SetDefault("max_request_body_size", 10*1024*1024) // 10MB
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_url_hosts", []string{})

	v.SetDefault("vision.provider", "mock")
	v.SetDefault("vision.azure_endpoint", "")
	v.SetDefault("vision.azure_api_key", "")
	v.SetDefault("vision.azure_api_version", "")
	v.SetDefault("vision.azure_face_endpoint", "")
	v.SetDefault("vision.aws_region", "")
	v.SetDefault("vision.aws_access_key_id", "")
	v.SetDefault("vision.aws_secret_access_key", "")
	v.SetDefault("vision.aws_session_token", "")
	v.SetDefault("vision.aws_endpoint", "")
	v.SetDefault("vision.google_api_key", "")
	v.SetDefault("vision.google_project_id", "")
	v.SetDefault("vision.google_endpoint", "")
	v.SetDefault("vision.timeout", 30*time.Second)

	v.SetDefault("storage.account_name", "")
	v.SetDefault("storage.account_key", "")
	v.SetDefault("storage.service_url", "")
	v.SetDefault("storage.max_bytes", storage.DefaultMaxBlobBytes)
}

// Load reads defaults, then the optional config file, then the environment
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by CONFIG_FILE, if any, plus the environment
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Validate checks ranges the server cannot start without
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.AnalysisTimeout <= 0 || c.Vision.Timeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, vision=%s)",
			c.RequestTimeout, c.AnalysisTimeout, c.Vision.Timeout)
	}
	return nil
}
