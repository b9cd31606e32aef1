package mergeapi

import (
	"bulk-merge/core/merge"
	"bulk-merge/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature bundles the merge API service and handler for the loader.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates the merge API feature. It is disabled when no database
// connection is available.
func NewFeature(db *gorm.DB, engine *merge.Engine, store storage.Client, bucket string, logger *zap.Logger) *Feature {
	service := NewService(db, engine, store, bucket, logger)
	return &Feature{
		handler: NewHandler(service),
		enabled: db != nil,
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "mergeapi"
}

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
