package crawl

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the crawl feature.
func NewFeature(o *Orchestrator, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(o, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "crawl"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.handler.orchestrator != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
