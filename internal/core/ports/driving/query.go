package driving

import (
	"context"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

// StreamFunc receives one incremental answer fragment.
type StreamFunc func(fragment string) error

// QueryService answers natural-language questions grounded in the
// corpus and user documents.
type QueryService interface {
	// Query runs retrieval and synthesis for one question. Only one
	// query may be in flight at a time; a concurrent call fails with
	// domain.ErrBusy.
	Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.RAGResponse, error)

	// QueryStream is like Query but delivers the answer incrementally.
	// Citations and confidence are only valid once the returned
	// response is delivered, after generation fully completes.
	QueryStream(ctx context.Context, question string, opts domain.QueryOptions, fn StreamFunc) (*domain.RAGResponse, error)

	// Stats returns chunk store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// IsReady reports whether the engine can answer queries.
	IsReady(ctx context.Context) bool
}

// ModelService exposes model lifecycle state to external actors.
type ModelService interface {
	// List returns all catalogued model descriptors with current
	// installed/loaded state.
	List(ctx context.Context) ([]domain.ModelDescriptor, error)

	// LoadedRAMMB returns the total RAM charged to loaded models.
	LoadedRAMMB() int

	// Unload releases a model and evicts it if nothing holds it.
	Unload(ctx context.Context, id string) error

	// Delete removes an installed, unloaded model from the catalog.
	Delete(ctx context.Context, id string) error
}

// DocumentService manages user-imported documents.
type DocumentService interface {
	// Import chunks, embeds and stores already-extracted text as a new
	// user document. Returns the document with final status.
	Import(ctx context.Context, name, fileType, content string) (*domain.Document, error)

	// List returns all user documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document and all of its chunks.
	Delete(ctx context.Context, id string) error
}
