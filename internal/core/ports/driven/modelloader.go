package driven

import (
	"context"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

// ModelLoader performs the actual load and unload of model artifacts
// into memory. Only the lifecycle controller may call it; no other
// component loads or unloads models directly.
type ModelLoader interface {
	// Load makes the model resident and returns a handle to it.
	// Load is potentially long-running and must honour ctx.
	Load(ctx context.Context, desc domain.ModelDescriptor) (ModelHandle, error)

	// Unload releases the model's memory.
	Unload(ctx context.Context, desc domain.ModelDescriptor) error
}

// ModelHandle represents one loaded model instance.
type ModelHandle interface {
	// ModelID returns the catalog ID of the loaded model.
	ModelID() string
}

// ModelCatalog persists model descriptors across runs.
type ModelCatalog interface {
	// Save stores or updates a descriptor.
	Save(ctx context.Context, desc domain.ModelDescriptor) error

	// Get retrieves a descriptor by ID.
	Get(ctx context.Context, id string) (*domain.ModelDescriptor, error)

	// List returns all catalogued descriptors.
	List(ctx context.Context) ([]domain.ModelDescriptor, error)

	// Delete removes a descriptor.
	Delete(ctx context.Context, id string) error
}
