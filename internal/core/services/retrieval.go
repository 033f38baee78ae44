package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// contextDelimiter separates chunks in the assembled context window.
const contextDelimiter = "\n\n---\n\n"

// Retrieval turns a question into a ranked, budget-fitted set of
// chunks. The embedding model is acquired through the lifecycle
// controller before every use.
type Retrieval struct {
	store     driven.ChunkStore
	lifecycle *ModelLifecycle
	embedder  driven.EmbeddingProvider
}

// NewRetrieval creates a retrieval engine.
func NewRetrieval(store driven.ChunkStore, lifecycle *ModelLifecycle, embedder driven.EmbeddingProvider) *Retrieval {
	return &Retrieval{
		store:     store,
		lifecycle: lifecycle,
		embedder:  embedder,
	}
}

// Retrieve returns the chunks most relevant to the question, at most
// opts.TopK of them, each meeting opts.Threshold. An empty result is a
// valid outcome, not an error: the caller must handle "no relevant
// context" explicitly.
func (r *Retrieval) Retrieve(ctx context.Context, question string, opts domain.QueryOptions) ([]domain.RetrievalResult, error) {
	if r.store == nil || r.embedder == nil || r.lifecycle == nil {
		return nil, fmt.Errorf("retrieval: %w", domain.ErrNotInitialized)
	}
	opts = opts.Normalized()

	logger.Section("Retrieval")
	logger.Debug("Question: %q (top_k=%d, threshold=%.2f)", question, opts.TopK, opts.Threshold)

	// The embedding model must be resident before computing the query
	// embedding. No silent fallback to text search on failure; callers
	// may catch ErrModelUnavailable and fall back explicitly.
	if _, err := r.lifecycle.Acquire(ctx, r.embedder.ModelID()); err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	defer r.lifecycle.Release(r.embedder.ModelID())

	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("retrieve: embed question: %w", domain.ErrModelUnavailable)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	// Over-fetch by 2x to allow for post-filtering.
	results, err := r.store.SearchVector(ctx, embedding, opts.TopK*2, opts.Threshold, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve: vector search: %w", err)
	}
	logger.Debug("Vector search: %d candidates", len(results))

	results = applyFilter(results, opts.Filter)

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	for i := range results {
		results[i].Rank = i
	}

	logger.Info("Retrieved %d chunks", len(results))
	return results, nil
}

// applyFilter re-applies metadata filters in case the store could not
// push them into its query.
func applyFilter(results []domain.RetrievalResult, filter domain.QueryFilter) []domain.RetrievalResult {
	if len(filter.Collections) == 0 && !filter.UserDocumentsOnly && filter.DocumentID == "" {
		return results
	}

	allowed := make(map[string]bool, len(filter.Collections))
	for _, c := range filter.Collections {
		allowed[c] = true
	}

	filtered := results[:0]
	for _, res := range results {
		if filter.UserDocumentsOnly && res.Chunk.Source != domain.SourceUserDocument {
			continue
		}
		if filter.DocumentID != "" && res.Chunk.DocumentID != filter.DocumentID {
			continue
		}
		if len(allowed) > 0 && res.Chunk.Source == domain.SourceCorpus && !allowed[res.Chunk.Collection] {
			continue
		}
		filtered = append(filtered, res)
	}
	return filtered
}

// BuildContext concatenates chunk contents into a prompt context,
// each chunk prefixed by its title and category label and separated by
// a distinct delimiter. Chunks are added in rank order until the next
// chunk would exceed maxTokens. The returned slice contains exactly
// the chunks present in the context string; chunks dropped by the
// budget must also be dropped from the citation set.
func (r *Retrieval) BuildContext(results []domain.RetrievalResult, maxTokens int) (string, []domain.RetrievalResult) {
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxTokens
	}

	var b strings.Builder
	var included []domain.RetrievalResult
	used := 0

	for _, res := range results {
		block := formatChunk(res.Chunk)
		cost := EstimateTokens(block)
		if len(included) > 0 {
			cost += EstimateTokens(contextDelimiter)
		}
		if used+cost > maxTokens {
			logger.Debug("Context budget reached: %d/%d tokens, %d of %d chunks",
				used, maxTokens, len(included), len(results))
			break
		}
		if len(included) > 0 {
			b.WriteString(contextDelimiter)
		}
		b.WriteString(block)
		used += cost
		included = append(included, res)
	}

	logger.Debug("Context: %d chunks, ~%d tokens", len(included), used)
	return b.String(), included
}

// formatChunk renders one chunk as a labelled context block.
func formatChunk(c domain.Chunk) string {
	label := c.DisplayTitle()
	if c.Collection != "" {
		if c.SubCollection != "" {
			label = fmt.Sprintf("%s (%s / %s)", label, c.Collection, c.SubCollection)
		} else {
			label = fmt.Sprintf("%s (%s)", label, c.Collection)
		}
	}
	return fmt.Sprintf("[%s]\n%s", label, c.Content)
}
