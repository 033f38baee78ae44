package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.DocumentService = (*Importer)(nil)

// Chunking parameters, matching the corpus preparation pipeline.
const (
	// DefaultChunkSize is the target number of characters per chunk.
	DefaultChunkSize = 500

	// DefaultChunkOverlap is the number of overlapping characters
	// between consecutive chunks.
	DefaultChunkOverlap = 50

	// minChunkSize drops trailing fragments too small to be useful.
	minChunkSize = 100

	// embedBatchSize bounds how many chunks are embedded per provider
	// call.
	embedBatchSize = 16
)

// Importer turns already-extracted document text into stored,
// embedded user chunks. File parsing (PDF/DOCX/EPUB extraction) is the
// front end's job; the importer receives plain text.
type Importer struct {
	store     driven.ChunkStore
	lifecycle *ModelLifecycle
	embedder  driven.EmbeddingProvider

	// limiter paces embedding batches so a large import cannot starve
	// an interactive query of the embedding model.
	limiter *rate.Limiter

	chunkSize int
	overlap   int
}

// NewImporter creates an import pipeline service.
func NewImporter(store driven.ChunkStore, lifecycle *ModelLifecycle, embedder driven.EmbeddingProvider) *Importer {
	return &Importer{
		store:     store,
		lifecycle: lifecycle,
		embedder:  embedder,
		limiter:   rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
}

// Import chunks, embeds and stores the text as a new user document,
// driving its status pending -> processing -> ready or error.
func (im *Importer) Import(ctx context.Context, name, fileType, content string) (*domain.Document, error) {
	if im.store == nil || im.embedder == nil || im.lifecycle == nil {
		return nil, fmt.Errorf("import: %w", domain.ErrNotInitialized)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("import %s: empty content: %w", name, domain.ErrInvalidInput)
	}

	logger.Section("Document Import")
	logger.Debug("Importing %q (%s, %d bytes)", name, fileType, len(content))

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      fileType,
		Size:      int64(len(content)),
		Status:    domain.DocumentStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := im.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	doc.Status = domain.DocumentStatusProcessing
	if err := im.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	if err := im.process(ctx, doc, content); err != nil {
		// Remove any chunks written before the failure so no partial
		// document is searchable, then re-save the record with the
		// error so the failure stays visible in document listings.
		if delErr := im.store.DeleteDocument(ctx, doc.ID); delErr != nil {
			logger.Warn("Cleanup of partial import %s failed: %v", doc.ID, delErr)
		}
		doc.Status = domain.DocumentStatusError
		doc.Error = err.Error()
		if saveErr := im.store.SaveDocument(ctx, doc); saveErr != nil {
			logger.Warn("Saving error status for %s failed: %v", doc.ID, saveErr)
		}
		return doc, fmt.Errorf("import %s: %w", name, err)
	}

	doc.Status = domain.DocumentStatusReady
	doc.ProcessedAt = time.Now().UTC()
	if err := im.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	logger.Info("Imported %q: %d chunks", name, doc.ChunkCount)
	return doc, nil
}

// process chunks the content, embeds it in batches and stores the
// chunks. Updates doc.ChunkCount on success.
func (im *Importer) process(ctx context.Context, doc *domain.Document, content string) error {
	pieces := SplitText(content, im.chunkSize, im.overlap)
	if len(pieces) == 0 {
		return fmt.Errorf("no chunks produced: %w", domain.ErrInvalidInput)
	}
	logger.Debug("Split into %d chunks", len(pieces))

	if _, err := im.lifecycle.Acquire(ctx, im.embedder.ModelID()); err != nil {
		return err
	}
	defer im.lifecycle.Release(im.embedder.ModelID())

	now := time.Now().UTC()
	for start := 0; start < len(pieces); start += embedBatchSize {
		end := min(start+embedBatchSize, len(pieces))
		batch := pieces[start:end]

		if err := im.limiter.Wait(ctx); err != nil {
			return err
		}

		embeddings, err := im.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch %d-%d: got %d embeddings for %d texts",
				start, end, len(embeddings), len(batch))
		}
		if want := im.embedder.Dimensions(); want > 0 {
			for i := range embeddings {
				if len(embeddings[i]) != want {
					return fmt.Errorf("embed batch %d-%d: got %d dimensions, want %d: %w",
						start, end, len(embeddings[i]), want, domain.ErrDimensionMismatch)
				}
			}
		}

		for i, text := range batch {
			chunk := domain.Chunk{
				Source:      domain.SourceUserDocument,
				DocumentID:  doc.ID,
				Content:     text,
				ChunkIndex:  start + i,
				TotalChunks: len(pieces),
				Title:       doc.Name,
				Embedding:   embeddings[i],
				CreatedAt:   now,
			}
			if _, err := im.store.AddChunk(ctx, chunk); err != nil {
				return fmt.Errorf("store chunk %d: %w", start+i, err)
			}
		}
	}

	doc.ChunkCount = len(pieces)
	return nil
}

// List returns all user documents.
func (im *Importer) List(ctx context.Context) ([]domain.Document, error) {
	if im.store == nil {
		return nil, fmt.Errorf("list documents: %w", domain.ErrNotInitialized)
	}
	return im.store.ListDocuments(ctx)
}

// Delete removes a document and all of its chunks.
func (im *Importer) Delete(ctx context.Context, id string) error {
	if im.store == nil {
		return fmt.Errorf("delete document: %w", domain.ErrNotInitialized)
	}
	return im.store.DeleteDocument(ctx, id)
}

// SplitText splits text into chunks of roughly chunkSize characters
// with the given overlap, preferring to break at whitespace or Thai
// phrase boundaries. Trailing fragments below the minimum size are
// merged into the previous chunk.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 10
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := min(start+chunkSize, len(runes))

		// Prefer a break at whitespace near the boundary.
		if end < len(runes) {
			for i := end; i > start+chunkSize/2; i-- {
				if isBreakRune(runes[i-1]) {
					end = i
					break
				}
			}
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			if len([]rune(piece)) < minChunkSize && len(chunks) > 0 {
				chunks[len(chunks)-1] += " " + piece
			} else {
				chunks = append(chunks, piece)
			}
		}

		if end == len(runes) {
			break
		}
		// A break chosen close to the chunk start can put end-overlap
		// at or before start; advance without overlap then so the scan
		// always makes progress.
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// isBreakRune reports whether the rune is a reasonable chunk boundary.
// Thai text carries no spaces between words, so paragraph marks and
// the paiyannoi/angkhankhu signs also count.
func isBreakRune(r rune) bool {
	switch r {
	case ' ', '\n', '\t', '.', '!', '?':
		return true
	case 'ฯ', '๚', '๛':
		return true
	}
	return false
}
