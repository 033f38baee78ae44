package driven

import "context"

// EmbeddingProvider generates vector embeddings from text. The engine
// treats embedding as an opaque capability; the provider is backed by a
// locally-resident model behind the lifecycle controller.
//
// Embeddings are deterministic for identical input modulo model version.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384).
	Dimensions() int

	// ModelID returns the lifecycle catalog ID of the backing model.
	ModelID() string
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// StreamFunc receives one incremental text fragment. Returning an error
// stops the stream at the next safe token boundary.
type StreamFunc func(fragment string) error

// GenerationProvider produces text from a locally-resident language
// model.
type GenerationProvider interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a completion as incremental fragments
	// delivered to fn, returning the full text once the stream ends.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions, fn StreamFunc) (string, error)

	// ModelID returns the lifecycle catalog ID of the backing model.
	ModelID() string
}

// SpeechToTextProvider transcribes audio to text.
type SpeechToTextProvider interface {
	// Transcribe converts spoken audio into text.
	Transcribe(ctx context.Context, audio []byte) (string, error)

	// ModelID returns the lifecycle catalog ID of the backing model.
	ModelID() string
}

// SpeechSynthesisProvider converts text to spoken audio.
type SpeechSynthesisProvider interface {
	// Synthesize converts text into audio.
	Synthesize(ctx context.Context, text string) ([]byte, error)

	// ModelID returns the lifecycle catalog ID of the backing model.
	ModelID() string
}
