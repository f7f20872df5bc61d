package container

import (
	"fmt"
	"net/http"

	"github.com/NatiBytes/crispy-vison/internal/config"
	"github.com/NatiBytes/crispy-vison/internal/factory"
	"github.com/NatiBytes/crispy-vison/internal/inference"
	"github.com/NatiBytes/crispy-vison/internal/logger"
	"github.com/NatiBytes/crispy-vison/internal/observer"
	"github.com/NatiBytes/crispy-vison/internal/pipeline"
	"github.com/NatiBytes/crispy-vison/internal/service"
	"github.com/NatiBytes/crispy-vison/internal/storage"
	"github.com/NatiBytes/crispy-vison/internal/transport"
	"github.com/NatiBytes/crispy-vison/internal/viewstate"
	"github.com/NatiBytes/crispy-vison/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	engine        inference.Engine
	previews      storage.PreviewStore
	state         *viewstate.Store
	metrics       *observer.MetricsObserver
	uploadService service.UploadService
	handler       http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	engine, err := factory.NewEngineFactory().CreateEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference engine: %w", err)
	}

	previews, err := factory.NewStorageFactory().CreateStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview store: %w", err)
	}

	state := viewstate.NewStore()
	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	analyzer := pipeline.New(engine)
	uploadService := service.NewUploadService(
		validation.NewFileValidator(), previews, analyzer, state, publisher)
	handler := transport.NewHandler(uploadService, cfg)

	return &Container{
		config:        cfg,
		engine:        engine,
		previews:      previews,
		state:         state,
		metrics:       metrics,
		uploadService: uploadService,
		handler:       handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the metrics observer
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
