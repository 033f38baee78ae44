// Package memory provides in-memory storage adapters. Used by tests
// and for ephemeral runs without a data directory.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// A single RWMutex gives the same atomicity guarantees as the SQLite
// adapter: readers never observe partial writes or deletes.
type ChunkStore struct {
	mu        sync.RWMutex
	chunks    []domain.Chunk // insertion order preserved for text ties
	documents map[string]domain.Document
}

// NewChunkStore creates an empty in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents: make(map[string]domain.Document),
	}
}

// LoadCorpus bulk-adds read-only corpus chunks.
func (s *ChunkStore) LoadCorpus(chunks []domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Source = domain.SourceCorpus
		s.chunks = append(s.chunks, c)
	}
}

// SearchText performs term-frequency search over chunk contents.
func (s *ChunkStore) SearchText(_ context.Context, query string, limit int) ([]driven.TextHit, error) {
	terms := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(terms) == 0 || limit <= 0 {
		return []driven.TextHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type rankedHit struct {
		hit   driven.TextHit
		order int
	}
	var hits []rankedHit
	for i, chunk := range s.chunks {
		content := strings.ToLower(chunk.Content)
		length := len([]rune(content))
		if length == 0 {
			continue
		}
		var count int
		for _, term := range terms {
			count += strings.Count(content, term)
		}
		if count == 0 {
			continue
		}
		hits = append(hits, rankedHit{
			hit:   driven.TextHit{Chunk: chunk, Score: float64(count) / float64(length)},
			order: i,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Score != hits[j].hit.Score {
			return hits[i].hit.Score > hits[j].hit.Score
		}
		return hits[i].order < hits[j].order
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]driven.TextHit, len(hits))
	for i := range hits {
		results[i] = hits[i].hit
	}
	return results, nil
}

// SearchVector performs an exact cosine-similarity scan over candidate
// chunks. Dimension mismatches are skipped.
func (s *ChunkStore) SearchVector(_ context.Context, embedding []float32, limit int, threshold float64, filter domain.QueryFilter) ([]domain.RetrievalResult, error) {
	if len(embedding) == 0 || limit <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make(map[string]bool, len(filter.Collections))
	for _, c := range filter.Collections {
		allowed[c] = true
	}

	results := []domain.RetrievalResult{}
	for _, chunk := range s.chunks {
		if !candidateMatches(chunk, filter, allowed) {
			continue
		}
		if len(chunk.Embedding) != len(embedding) {
			continue
		}
		score := cosineSimilarity(embedding, chunk.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, domain.RetrievalResult{Chunk: chunk, Similarity: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

// candidateMatches applies the query filter to one chunk.
func candidateMatches(chunk domain.Chunk, filter domain.QueryFilter, allowed map[string]bool) bool {
	if filter.UserDocumentsOnly {
		if chunk.Source != domain.SourceUserDocument {
			return false
		}
		if filter.DocumentID != "" && chunk.DocumentID != filter.DocumentID {
			return false
		}
		return true
	}
	if chunk.Source == domain.SourceUserDocument {
		return filter.IncludeUserDocuments
	}
	if len(allowed) > 0 && !allowed[chunk.Collection] {
		return false
	}
	return true
}

// AddChunk appends one chunk with its embedding.
func (s *ChunkStore) AddChunk(_ context.Context, chunk domain.Chunk) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if chunk.Source == "" {
		chunk.Source = domain.SourceUserDocument
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}
	for _, existing := range s.chunks {
		if existing.ID == chunk.ID {
			return "", fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrAlreadyExists)
		}
	}
	s.chunks = append(s.chunks, chunk)
	return chunk.ID, nil
}

// SaveDocument stores or updates a document.
func (s *ChunkStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("saving document: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ChunkStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *ChunkStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// DeleteDocument removes a document and all of its chunks atomically.
func (s *ChunkStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, chunk := range s.chunks {
		if chunk.DocumentID != id {
			kept = append(kept, chunk)
		}
	}
	s.chunks = kept
	delete(s.documents, id)
	return nil
}

// Stats returns chunk and document counts.
func (s *ChunkStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.StoreStats
	for _, chunk := range s.chunks {
		if chunk.Source == domain.SourceCorpus {
			stats.CorpusChunks++
		} else {
			stats.UserChunks++
		}
	}
	stats.Documents = len(s.documents)
	return stats, nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to [0,1].
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
