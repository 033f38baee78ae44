package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// systemInstruction is the fixed grounding preamble. The generation
// model must answer only from the supplied passages and must admit
// when they are insufficient.
const systemInstruction = `You are a scholarly assistant answering questions about the Tipitaka (Buddhist canon).
Answer ONLY from the passages provided below. Quote or paraphrase the passages; cite the passage titles you used.
If the passages do not contain the answer, reply that the answer was not found in the texts.
Answer in the same language as the question.`

// noGroundingAnswer is returned when retrieval found no relevant
// passages. No generation call is made in that case.
const noGroundingAnswer = "No relevant passages were found in the texts for this question."

// Default generation parameters.
const (
	defaultAnswerTokens = 512
	defaultTemperature  = 0.2
)

// Synthesis builds a grounded prompt from retrieved chunks, invokes
// the generation model through the lifecycle controller, and packages
// the result with citations and a confidence score.
type Synthesis struct {
	lifecycle   *ModelLifecycle
	generator   driven.GenerationProvider
	maxTokens   int
	temperature float64
}

// NewSynthesis creates an answer synthesizer. maxTokens and
// temperature fall back to defaults when zero.
func NewSynthesis(lifecycle *ModelLifecycle, generator driven.GenerationProvider, maxTokens int, temperature float64) *Synthesis {
	if maxTokens <= 0 {
		maxTokens = defaultAnswerTokens
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Synthesis{
		lifecycle:   lifecycle,
		generator:   generator,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Synthesize generates a grounded answer for the question from the
// assembled context. included must be exactly the chunks present in
// contextStr; citations are built strictly from it.
func (s *Synthesis) Synthesize(ctx context.Context, question, contextStr string, included []domain.RetrievalResult, topK int) (*domain.RAGResponse, error) {
	return s.synthesize(ctx, question, contextStr, included, topK, nil)
}

// SynthesizeStream is like Synthesize but delivers the answer as
// incremental fragments to fn. Citations and confidence are only
// computed once generation fully completes; a cancelled stream yields
// no citations.
func (s *Synthesis) SynthesizeStream(ctx context.Context, question, contextStr string, included []domain.RetrievalResult, topK int, fn driven.StreamFunc) (*domain.RAGResponse, error) {
	return s.synthesize(ctx, question, contextStr, included, topK, fn)
}

func (s *Synthesis) synthesize(ctx context.Context, question, contextStr string, included []domain.RetrievalResult, topK int, fn driven.StreamFunc) (*domain.RAGResponse, error) {
	if s.generator == nil || s.lifecycle == nil {
		return nil, fmt.Errorf("synthesis: %w", domain.ErrNotInitialized)
	}

	logger.Section("Synthesis")
	logger.Debug("Context: %d chunks, question: %q", len(included), question)

	if _, err := s.lifecycle.Acquire(ctx, s.generator.ModelID()); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer s.lifecycle.Release(s.generator.ModelID())

	prompt := buildPrompt(question, contextStr)
	opts := driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	var answer string
	var err error
	if fn != nil {
		answer, err = s.generator.GenerateStream(ctx, prompt, opts, fn)
	} else {
		answer, err = s.generator.Generate(ctx, prompt, opts)
	}
	if err != nil {
		// Partial output from a cancelled generation is discarded and
		// no citations are emitted.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("Generation cancelled, discarding partial output")
			return nil, fmt.Errorf("synthesize: %w", domain.ErrCancelled)
		}
		logger.Warn("Generation failed: %v", err)
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	citations := make([]domain.Citation, 0, len(included))
	for _, res := range included {
		citations = append(citations, domain.NewCitation(res))
	}

	resp := &domain.RAGResponse{
		Answer:     strings.TrimSpace(answer),
		Sources:    citations,
		Confidence: confidence(included, topK),
	}
	logger.Info("Answer: %d chars, %d citations, confidence %.2f",
		len(resp.Answer), len(resp.Sources), resp.Confidence)
	return resp, nil
}

// buildPrompt assembles the fixed instruction, the retrieved passages
// and the question into one generation prompt.
func buildPrompt(question, contextStr string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nPassages:\n")
	b.WriteString(contextStr)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// confidence estimates grounding quality as the mean similarity of the
// included chunks scaled by how full the context is relative to topK.
// The exact formula is a tunable, not a contract.
func confidence(included []domain.RetrievalResult, topK int) float64 {
	if len(included) == 0 || topK <= 0 {
		return 0
	}
	var sum float64
	for _, res := range included {
		sum += res.Similarity
	}
	avg := sum / float64(len(included))
	fill := float64(len(included)) / float64(topK)
	if fill > 1 {
		fill = 1
	}
	return avg * fill
}
