package driven

import (
	"context"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

// ChunkStore persists chunks with their embeddings for both the fixed
// corpus and user-imported documents. Backed by SQLite.
//
// Atomicity contract: AddChunk stores the chunk and its embedding in a
// single transaction, so a concurrent reader never observes a chunk
// without its embedding. DeleteDocument removes a document and all of
// its chunks in a single transaction; a concurrent SearchVector call
// observes either the full pre-delete or full post-delete state.
type ChunkStore interface {
	// SearchText performs full-text search over chunk contents and
	// returns matches ordered by term-frequency relevance, ties broken
	// by corpus insertion order.
	SearchText(ctx context.Context, query string, limit int) ([]TextHit, error)

	// SearchVector computes cosine similarity between the query
	// embedding and every candidate chunk. A chunk is included only if
	// its similarity meets threshold; chunks whose stored embedding
	// dimension disagrees with the query are skipped. Results are
	// sorted descending by similarity, ties broken by chunk ID, and
	// capped at limit.
	SearchVector(ctx context.Context, embedding []float32, limit int, threshold float64, filter domain.QueryFilter) ([]domain.RetrievalResult, error)

	// AddChunk appends one user-document chunk with its embedding.
	// Returns the new chunk ID.
	AddChunk(ctx context.Context, chunk domain.Chunk) (string, error)

	// SaveDocument stores or updates a user document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a user document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all user documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// Stats returns chunk and document counts. Read-only and
	// eventually consistent.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}

// TextHit is a full-text search result.
type TextHit struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Score is the term-frequency relevance score.
	Score float64
}
