package localai

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// DefaultEmbeddingDimensions matches the multilingual MiniLM model the
// corpus was embedded with.
const DefaultEmbeddingDimensions = 384

// EmbeddingProvider generates embeddings through the local runtime.
type EmbeddingProvider struct {
	client     *Client
	modelID    string
	dimensions int
}

// NewEmbeddingProvider creates an embedding provider for the given
// catalogued model. dimensions falls back to the corpus default when
// zero.
func NewEmbeddingProvider(client *Client, modelID string, dimensions int) *EmbeddingProvider {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &EmbeddingProvider{
		client:     client,
		modelID:    modelID,
		dimensions: dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request,
// retrying transient runtime errors with exponential backoff.
func (p *EmbeddingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var embeddings [][]float32

	operation := func() error {
		resp, err := p.client.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: p.modelID,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts)))
		}

		embeddings = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			embeddings[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 20 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (p *EmbeddingProvider) Dimensions() int {
	return p.dimensions
}

// ModelID returns the lifecycle catalog ID of the backing model.
func (p *EmbeddingProvider) ModelID() string {
	return p.modelID
}

// toFloat32 converts []float64 to []float32 for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
