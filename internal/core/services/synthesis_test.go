package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

func newTestSynthesis(generator *mockGenerator) *Synthesis {
	lc := newTestLifecycle(4000, &mockLoader{},
		installedModel(generator.ModelID(), domain.ModelKindGeneration, 2500))
	return NewSynthesis(lc, generator, 0, 0)
}

func TestSynthesis_Synthesize(t *testing.T) {
	ctx := context.Background()

	included := []domain.RetrievalResult{
		{Chunk: testCorpus()[0], Similarity: 0.9, Rank: 0},
		{Chunk: testCorpus()[1], Similarity: 0.7, Rank: 1},
	}

	t.Run("returns answer with citations from included chunks", func(t *testing.T) {
		synthesis := newTestSynthesis(&mockGenerator{answer: "  The five aggregates are...  "})

		resp, err := synthesis.Synthesize(ctx, "what are the aggregates?", "ctx", included, 5)
		require.NoError(t, err)

		assert.Equal(t, "The five aggregates are...", resp.Answer)
		require.Len(t, resp.Sources, 2)
		assert.Equal(t, "c1", resp.Sources[0].SourceID)
		assert.Equal(t, "ขันธ์ 5", resp.Sources[0].Title)
		assert.InDelta(t, 0.9, resp.Sources[0].Relevance, 1e-9)

		// avg(0.9, 0.7) scaled by 2/5 included.
		assert.InDelta(t, 0.32, resp.Confidence, 1e-9)
	})

	t.Run("cancelled generation discards partial output", func(t *testing.T) {
		synthesis := newTestSynthesis(&mockGenerator{genErr: context.Canceled})

		resp, err := synthesis.Synthesize(ctx, "q", "ctx", included, 5)
		assert.ErrorIs(t, err, domain.ErrCancelled)
		assert.Nil(t, resp)
	})

	t.Run("fails when generation model is not installed", func(t *testing.T) {
		generator := &mockGenerator{answer: "a"}
		lc := NewModelLifecycle(4000, &mockLoader{}, nil)
		require.NoError(t, lc.Register(domain.ModelDescriptor{
			ID: generator.ModelID(), Kind: domain.ModelKindGeneration, RAMCostMB: 2500,
		}))
		synthesis := NewSynthesis(lc, generator, 0, 0)

		_, err := synthesis.Synthesize(ctx, "q", "ctx", included, 5)
		assert.ErrorIs(t, err, domain.ErrNotInstalled)
	})
}

func TestSynthesis_SynthesizeStream(t *testing.T) {
	ctx := context.Background()

	included := []domain.RetrievalResult{
		{Chunk: testCorpus()[0], Similarity: 0.8, Rank: 0},
	}

	t.Run("delivers fragments then the final response", func(t *testing.T) {
		synthesis := newTestSynthesis(&mockGenerator{fragments: []string{"The ", "five ", "aggregates."}})

		var got []string
		resp, err := synthesis.SynthesizeStream(ctx, "q", "ctx", included, 5, func(fragment string) error {
			got = append(got, fragment)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"The ", "five ", "aggregates."}, got)
		assert.Equal(t, "The five aggregates.", resp.Answer)
		require.Len(t, resp.Sources, 1)
	})
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		included []domain.RetrievalResult
		topK     int
		expected float64
	}{
		{
			name:     "empty context",
			included: nil,
			topK:     5,
			expected: 0,
		},
		{
			name: "full context",
			included: []domain.RetrievalResult{
				{Similarity: 0.8}, {Similarity: 0.8}, {Similarity: 0.8},
				{Similarity: 0.8}, {Similarity: 0.8},
			},
			topK:     5,
			expected: 0.8,
		},
		{
			name:     "partial context scales down",
			included: []domain.RetrievalResult{{Similarity: 0.9}, {Similarity: 0.7}},
			topK:     5,
			expected: 0.32,
		},
		{
			name:     "fill never exceeds one",
			included: []domain.RetrievalResult{{Similarity: 0.5}, {Similarity: 0.5}},
			topK:     1,
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, confidence(tt.included, tt.topK), 1e-9)
		})
	}
}
