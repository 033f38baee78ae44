package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.QueryService = (*Orchestrator)(nil)

// Orchestrator is the single entry point for queries. It sequences
// retrieval then synthesis, admits only one in-flight query at a time
// and records wall-clock processing time.
type Orchestrator struct {
	retrieval *Retrieval
	synthesis *Synthesis
	lifecycle *ModelLifecycle
	store     driven.ChunkStore

	// busy enforces the single-flight query contract. A second query
	// arriving while one is active fails fast with ErrBusy rather
	// than queuing: two queries must not contend for the loaded
	// generation model mid-inference.
	busy atomic.Bool
}

// NewOrchestrator creates the query orchestrator.
func NewOrchestrator(retrieval *Retrieval, synthesis *Synthesis, lifecycle *ModelLifecycle, store driven.ChunkStore) *Orchestrator {
	return &Orchestrator{
		retrieval: retrieval,
		synthesis: synthesis,
		lifecycle: lifecycle,
		store:     store,
	}
}

// Query answers one question grounded in the corpus and user documents.
func (o *Orchestrator) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.RAGResponse, error) {
	return o.query(ctx, question, opts, nil)
}

// QueryStream is like Query but delivers the answer incrementally.
// The returned response, including citations and confidence, is only
// valid once generation fully completes.
func (o *Orchestrator) QueryStream(ctx context.Context, question string, opts domain.QueryOptions, fn driving.StreamFunc) (*domain.RAGResponse, error) {
	return o.query(ctx, question, opts, driven.StreamFunc(fn))
}

func (o *Orchestrator) query(ctx context.Context, question string, opts domain.QueryOptions, fn driven.StreamFunc) (*domain.RAGResponse, error) {
	if o.retrieval == nil || o.synthesis == nil {
		return nil, fmt.Errorf("query: %w", domain.ErrNotInitialized)
	}
	if question == "" {
		return nil, fmt.Errorf("query: empty question: %w", domain.ErrInvalidInput)
	}

	if !o.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer o.busy.Store(false)

	start := time.Now()
	opts = opts.Normalized()

	logger.Section("Query")
	logger.Debug("Question: %q", question)

	// Retrieval always completes (or fails) before synthesis begins.
	results, err := o.retrieval.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	// Zero relevant chunks is a valid outcome, distinct from failure.
	// Producing an unfounded answer here would violate the grounding
	// guarantee, so no generation call is made.
	if len(results) == 0 {
		logger.Info("No chunks met threshold %.2f", opts.Threshold)
		if fn != nil {
			if err := fn(noGroundingAnswer); err != nil {
				return nil, fmt.Errorf("query: %w", err)
			}
		}
		return &domain.RAGResponse{
			Answer:         noGroundingAnswer,
			Sources:        []domain.Citation{},
			Confidence:     0,
			ProcessingTime: time.Since(start),
		}, nil
	}

	contextStr, included := o.retrieval.BuildContext(results, opts.MaxContextTokens)

	// Citations are built only from the chunk set passed into
	// synthesis, never recomputed afterward.
	var resp *domain.RAGResponse
	if fn != nil {
		resp, err = o.synthesis.SynthesizeStream(ctx, question, contextStr, included, opts.TopK, fn)
	} else {
		resp, err = o.synthesis.Synthesize(ctx, question, contextStr, included, opts.TopK)
	}
	if err != nil {
		return nil, err
	}

	resp.ProcessingTime = time.Since(start)
	logger.Info("Query completed in %s", resp.ProcessingTime)
	return resp, nil
}

// Stats returns chunk store contents.
func (o *Orchestrator) Stats(ctx context.Context) (domain.StoreStats, error) {
	if o.store == nil {
		return domain.StoreStats{}, fmt.Errorf("stats: %w", domain.ErrNotInitialized)
	}
	return o.store.Stats(ctx)
}

// IsReady reports whether the engine can answer queries: the store is
// reachable and both the embedding and generation models are installed.
func (o *Orchestrator) IsReady(ctx context.Context) bool {
	if o.store == nil || o.retrieval == nil || o.synthesis == nil || o.lifecycle == nil {
		return false
	}
	if _, err := o.store.Stats(ctx); err != nil {
		return false
	}
	for _, id := range []string{o.retrieval.embedder.ModelID(), o.synthesis.generator.ModelID()} {
		desc, err := o.lifecycle.Get(id)
		if err != nil || !desc.Installed {
			return false
		}
	}
	return true
}
