package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaweerawat2/TipitakaAi/internal/adapters/driven/storage/memory"
	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// blockingGenerator holds generation open until released, to exercise
// the single-flight contract.
type blockingGenerator struct {
	started   chan struct{}
	release   chan struct{}
	startOnce sync.Once
}

func (g *blockingGenerator) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	g.startOnce.Do(func() { close(g.started) })
	<-g.release
	return "done", nil
}

func (g *blockingGenerator) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions, _ driven.StreamFunc) (string, error) {
	return g.Generate(ctx, prompt, opts)
}

func (g *blockingGenerator) ModelID() string { return "mock-gen" }

func newTestEngine(t *testing.T, embedder *mockEmbedder, generator driven.GenerationProvider) *Orchestrator {
	t.Helper()

	store := memory.NewChunkStore()
	store.LoadCorpus(testCorpus())

	lc := newTestLifecycle(4000, &mockLoader{},
		installedModel(embedder.ModelID(), domain.ModelKindEmbedding, 500),
		installedModel(generator.ModelID(), domain.ModelKindGeneration, 2500))

	retrieval := NewRetrieval(store, lc, embedder)
	synthesis := NewSynthesis(lc, generator, 0, 0)
	return NewOrchestrator(retrieval, synthesis, lc, store)
}

func TestOrchestrator_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("answers a grounded question", func(t *testing.T) {
		embedder := &mockEmbedder{embedding: []float32{1, 0}}
		generator := &mockGenerator{answer: "Form, feeling, perception, formations, consciousness."}
		engine := newTestEngine(t, embedder, generator)

		resp, err := engine.Query(ctx, "what are the five aggregates?", domain.QueryOptions{})
		require.NoError(t, err)

		assert.Equal(t, "Form, feeling, perception, formations, consciousness.", resp.Answer)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, "c1", resp.Sources[0].SourceID)
		assert.Greater(t, resp.Confidence, 0.0)
		assert.Greater(t, resp.ProcessingTime.Nanoseconds(), int64(0))
	})

	t.Run("no relevant chunks yields fixed answer without generation", func(t *testing.T) {
		embedder := &mockEmbedder{embedding: []float32{-1, 0}}
		// A generation call would fail loudly.
		generator := &mockGenerator{genErr: assert.AnError}
		engine := newTestEngine(t, embedder, generator)

		resp, err := engine.Query(ctx, "unanswerable", domain.QueryOptions{})
		require.NoError(t, err)

		assert.Equal(t, noGroundingAnswer, resp.Answer)
		assert.Equal(t, 0.0, resp.Confidence)
		assert.NotNil(t, resp.Sources)
		assert.Empty(t, resp.Sources)
	})

	t.Run("empty question", func(t *testing.T) {
		engine := newTestEngine(t, &mockEmbedder{embedding: []float32{1, 0}}, &mockGenerator{answer: "a"})

		_, err := engine.Query(ctx, "", domain.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("second concurrent query fails with busy", func(t *testing.T) {
		embedder := &mockEmbedder{embedding: []float32{1, 0}}
		generator := &blockingGenerator{
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		engine := newTestEngine(t, embedder, generator)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Query(ctx, "first", domain.QueryOptions{})
			assert.NoError(t, err)
		}()

		<-generator.started
		_, err := engine.Query(ctx, "second", domain.QueryOptions{})
		assert.ErrorIs(t, err, domain.ErrBusy)

		close(generator.release)
		wg.Wait()

		// The slot frees once the first query completes.
		resp, err := engine.Query(ctx, "third", domain.QueryOptions{})
		require.NoError(t, err)
		assert.NotNil(t, resp)
	})
}

func TestOrchestrator_QueryStream(t *testing.T) {
	ctx := context.Background()

	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	generator := &mockGenerator{fragments: []string{"The five ", "aggregates."}}
	engine := newTestEngine(t, embedder, generator)

	var fragments []string
	resp, err := engine.QueryStream(ctx, "question", domain.QueryOptions{}, func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"The five ", "aggregates."}, fragments)
	assert.Equal(t, "The five aggregates.", resp.Answer)
	require.Len(t, resp.Sources, 1)
}

func TestOrchestrator_IsReady(t *testing.T) {
	ctx := context.Background()

	t.Run("ready when store reachable and models installed", func(t *testing.T) {
		engine := newTestEngine(t, &mockEmbedder{embedding: []float32{1, 0}}, &mockGenerator{answer: "a"})
		assert.True(t, engine.IsReady(ctx))
	})

	t.Run("not ready when a model is missing", func(t *testing.T) {
		store := memory.NewChunkStore()
		embedder := &mockEmbedder{embedding: []float32{1, 0}}
		generator := &mockGenerator{answer: "a"}

		lc := newTestLifecycle(4000, &mockLoader{},
			installedModel(embedder.ModelID(), domain.ModelKindEmbedding, 500))
		// Generation model registered but not installed.
		require.NoError(t, lc.Register(domain.ModelDescriptor{
			ID: generator.ModelID(), Kind: domain.ModelKindGeneration, RAMCostMB: 2500,
		}))

		engine := NewOrchestrator(
			NewRetrieval(store, lc, embedder),
			NewSynthesis(lc, generator, 0, 0),
			lc, store)

		assert.False(t, engine.IsReady(ctx))
	})
}
