package services

import (
	"context"
	"fmt"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// VoiceEventFunc receives one typed voice pipeline event.
type VoiceEventFunc func(event domain.VoiceEvent) error

// Voice runs the spoken interaction flow: transcribe the question,
// answer it through the orchestrator, then synthesise the answer as
// audio. Each stage acquires its model through the lifecycle
// controller, so the three model types share one RAM budget.
type Voice struct {
	orchestrator *Orchestrator
	lifecycle    *ModelLifecycle
	stt          driven.SpeechToTextProvider
	tts          driven.SpeechSynthesisProvider
}

// NewVoice creates the voice pipeline. The tts provider may be nil,
// in which case no audio event is emitted.
func NewVoice(orchestrator *Orchestrator, lifecycle *ModelLifecycle, stt driven.SpeechToTextProvider, tts driven.SpeechSynthesisProvider) *Voice {
	return &Voice{
		orchestrator: orchestrator,
		lifecycle:    lifecycle,
		stt:          stt,
		tts:          tts,
	}
}

// Ask answers a spoken question, emitting transcript, response and
// audio events in order. Lifecycle failures surface verbatim so the
// caller can decide fallback policy, such as switching to a smaller
// speech-to-text model.
func (v *Voice) Ask(ctx context.Context, audio []byte, opts domain.QueryOptions, fn VoiceEventFunc) (*domain.RAGResponse, error) {
	if v.orchestrator == nil || v.stt == nil || v.lifecycle == nil {
		return nil, fmt.Errorf("voice: %w", domain.ErrNotInitialized)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("voice: empty audio: %w", domain.ErrInvalidInput)
	}

	logger.Section("Voice Interaction")

	question, err := v.transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	logger.Info("Transcript: %q", question)

	if err := fn(domain.VoiceEvent{Type: domain.VoiceEventTranscript, Text: question}); err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}

	resp, err := v.orchestrator.QueryStream(ctx, question, opts, func(fragment string) error {
		return fn(domain.VoiceEvent{Type: domain.VoiceEventResponse, Text: fragment})
	})
	if err != nil {
		return nil, err
	}

	if err := fn(domain.VoiceEvent{Type: domain.VoiceEventResponse, Response: resp}); err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}

	if v.tts != nil {
		speech, err := v.speak(ctx, resp.Answer)
		if err != nil {
			// The grounded answer already reached the caller as text;
			// a speech failure does not invalidate it.
			logger.Warn("Speech synthesis failed: %v", err)
			return resp, nil
		}
		if err := fn(domain.VoiceEvent{Type: domain.VoiceEventAudio, Audio: speech}); err != nil {
			return nil, fmt.Errorf("voice: %w", err)
		}
	}

	return resp, nil
}

// transcribe acquires the speech-to-text model and converts audio to
// text.
func (v *Voice) transcribe(ctx context.Context, audio []byte) (string, error) {
	if _, err := v.lifecycle.Acquire(ctx, v.stt.ModelID()); err != nil {
		return "", fmt.Errorf("voice: %w", err)
	}
	defer v.lifecycle.Release(v.stt.ModelID())

	text, err := v.stt.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("voice: transcribe: %w", err)
	}
	return text, nil
}

// speak acquires the speech-synthesis model and renders the answer as
// audio.
func (v *Voice) speak(ctx context.Context, text string) ([]byte, error) {
	if _, err := v.lifecycle.Acquire(ctx, v.tts.ModelID()); err != nil {
		return nil, err
	}
	defer v.lifecycle.Release(v.tts.ModelID())

	return v.tts.Synthesize(ctx, text)
}
