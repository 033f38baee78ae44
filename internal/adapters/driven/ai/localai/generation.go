package localai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// Ensure GenerationProvider implements the interface.
var _ driven.GenerationProvider = (*GenerationProvider)(nil)

// GenerationProvider generates text completions through the local
// runtime.
type GenerationProvider struct {
	client  *Client
	modelID string
}

// NewGenerationProvider creates a generation provider for the given
// catalogued model.
func NewGenerationProvider(client *Client, modelID string) *GenerationProvider {
	return &GenerationProvider{client: client, modelID: modelID}
}

// Generate produces a complete answer for the prompt.
func (p *GenerationProvider) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := p.client.api.Chat.Completions.New(ctx, p.params(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate: runtime returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream produces an answer incrementally, calling fn for each
// text fragment as the runtime emits it.
func (p *GenerationProvider) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions, fn driven.StreamFunc) (string, error) {
	stream := p.client.api.Chat.Completions.NewStreaming(ctx, p.params(prompt, opts))
	defer stream.Close()

	var full string
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		full += fragment
		if err := fn(fragment); err != nil {
			return "", fmt.Errorf("stream callback: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("generate stream: %w", err)
	}
	return full, nil
}

// ModelID returns the lifecycle catalog ID of the backing model.
func (p *GenerationProvider) ModelID() string {
	return p.modelID
}

func (p *GenerationProvider) params(prompt string, opts driven.GenerateOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: p.modelID,
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	return params
}
