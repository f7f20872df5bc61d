package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// EngineType selects the remote inference backend.
type EngineType string

const (
	EngineHuggingFace EngineType = "huggingface"
	EngineOpenAI      EngineType = "openai"
)

type Config struct {
	Host             string
	Port             string
	RequestTimeout   time.Duration
	InferenceTimeout time.Duration
	MaxUploadSize    int64

	// Remote inference service
	Engine       EngineType
	HFAPIURL     string
	HFAPIToken   string // may be empty; passed through and rejected by the service
	CaptionModel string
	OCRModel     string
	OpenAIAPIKey string
	OpenAIModel  string

	// Preview storage (blob-backed when account is set, in-memory otherwise)
	AzureAccountName   string
	AzureAccountKey    string
	AzureContainerName string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// BlobStorageEnabled reports whether previews go to Azure Blob Storage.
func (c *Config) BlobStorageEnabled() bool {
	return c.AzureAccountName != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		Port:             getEnvOrDefault("PORT", "8080"),
		RequestTimeout:   parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		InferenceTimeout: parseDurationOrDefault("INFERENCE_TIMEOUT", 30*time.Second),
		MaxUploadSize:    parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB

		Engine:       EngineType(strings.ToLower(getEnvOrDefault("INFERENCE_ENGINE", string(EngineHuggingFace)))),
		HFAPIURL:     getEnvOrDefault("HF_API_URL", "https://api-inference.huggingface.co"),
		HFAPIToken:   os.Getenv("HF_API_TOKEN"),
		CaptionModel: getEnvOrDefault("CAPTION_MODEL", "Salesforce/blip-image-captioning-large"),
		OCRModel:     getEnvOrDefault("OCR_MODEL", "microsoft/trocr-base-handwritten"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),

		AzureAccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainerName: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "previews"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.InferenceTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, inference=%s)",
			cfg.RequestTimeout, cfg.InferenceTimeout)
	}
	switch cfg.Engine {
	case EngineHuggingFace, EngineOpenAI:
	default:
		return nil, fmt.Errorf("invalid INFERENCE_ENGINE: %q", cfg.Engine)
	}
	if cfg.HFAPIURL == "" || cfg.CaptionModel == "" || cfg.OCRModel == "" {
		return nil, fmt.Errorf("HF_API_URL, CAPTION_MODEL and OCR_MODEL must not be empty")
	}
	if cfg.BlobStorageEnabled() && cfg.AzureAccountKey == "" {
		return nil, fmt.Errorf("AZURE_STORAGE_KEY is required when AZURE_STORAGE_ACCOUNT is set")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
