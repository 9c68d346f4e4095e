package changes

import (
	"cloud-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new changes feature. history may be nil, in which
// case the history route answers 404.
func NewFeature(targets []reconcile.Target, history History, logger *zap.Logger) *Feature {
	svc := NewService(targets, history, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "changes"
}

// IsEnabled reports whether any resource type is configured.
func (f *Feature) IsEnabled() bool {
	return len(f.service.targets) > 0
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
