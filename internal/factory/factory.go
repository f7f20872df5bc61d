package factory

import (
	"fmt"

	"github.com/NatiBytes/crispy-vison/internal/config"
	"github.com/NatiBytes/crispy-vison/internal/inference"
	"github.com/NatiBytes/crispy-vison/internal/storage"
)

// EngineFactory creates inference engines
type EngineFactory interface {
	CreateEngine(cfg *config.Config) (inference.Engine, error)
}

// StorageFactory creates preview store implementations
type StorageFactory interface {
	CreateStore(cfg *config.Config) (storage.PreviewStore, error)
}

// engineFactory implements EngineFactory
type engineFactory struct{}

// NewEngineFactory creates a new engine factory
func NewEngineFactory() EngineFactory {
	return &engineFactory{}
}

// CreateEngine creates an engine based on the configured backend
func (f *engineFactory) CreateEngine(cfg *config.Config) (inference.Engine, error) {
	switch cfg.Engine {
	case config.EngineHuggingFace:
		return inference.NewHFClient(cfg.HFAPIURL, cfg.HFAPIToken,
			cfg.CaptionModel, cfg.OCRModel, cfg.InferenceTimeout), nil
	case config.EngineOpenAI:
		return inference.NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported inference engine: %s", cfg.Engine)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateStore creates the preview store for the configured backend
func (f *storageFactory) CreateStore(cfg *config.Config) (storage.PreviewStore, error) {
	if cfg.BlobStorageEnabled() {
		return storage.NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainerName)
	}
	return storage.NewMemoryStore(), nil
}
