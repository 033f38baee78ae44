package services

import (
	"context"
	"sync"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// --- Mock implementations shared across service tests ---

// mockHandle implements driven.ModelHandle.
type mockHandle struct {
	id string
}

func (h *mockHandle) ModelID() string { return h.id }

// mockLoader implements driven.ModelLoader and records transitions.
type mockLoader struct {
	mu       sync.Mutex
	loads    []string
	unloads  []string
	loadErr  error
	loadHook func(id string) // runs inside Load, before returning
}

func (m *mockLoader) Load(_ context.Context, desc domain.ModelDescriptor) (driven.ModelHandle, error) {
	m.mu.Lock()
	m.loads = append(m.loads, desc.ID)
	hook := m.loadHook
	err := m.loadErr
	m.mu.Unlock()

	if hook != nil {
		hook(desc.ID)
	}
	if err != nil {
		return nil, err
	}
	return &mockHandle{id: desc.ID}, nil
}

func (m *mockLoader) Unload(_ context.Context, desc domain.ModelDescriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloads = append(m.unloads, desc.ID)
	return nil
}

func (m *mockLoader) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

func (m *mockLoader) unloaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.unloads...)
}

// mockEmbedder implements driven.EmbeddingProvider.
type mockEmbedder struct {
	id        string
	embedding []float32
	embedErr  error
	dims      int // overrides Dimensions when set

	mu    sync.Mutex
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbedder) ModelID() string {
	if m.id != "" {
		return m.id
	}
	return "mock-embed"
}

// mockGenerator implements driven.GenerationProvider.
type mockGenerator struct {
	id        string
	answer    string
	fragments []string
	genErr    error
}

func (m *mockGenerator) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.answer, nil
}

func (m *mockGenerator) GenerateStream(_ context.Context, _ string, _ driven.GenerateOptions, fn driven.StreamFunc) (string, error) {
	if m.genErr != nil {
		return "", m.genErr
	}
	var full string
	for _, frag := range m.fragments {
		full += frag
		if err := fn(frag); err != nil {
			return "", err
		}
	}
	if full == "" {
		full = m.answer
	}
	return full, nil
}

func (m *mockGenerator) ModelID() string {
	if m.id != "" {
		return m.id
	}
	return "mock-gen"
}

// mockSTT implements driven.SpeechToTextProvider.
type mockSTT struct {
	id         string
	transcript string
	err        error
}

func (m *mockSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.transcript, nil
}

func (m *mockSTT) ModelID() string {
	if m.id != "" {
		return m.id
	}
	return "mock-stt"
}

// mockTTS implements driven.SpeechSynthesisProvider.
type mockTTS struct {
	id    string
	audio []byte
	err   error
}

func (m *mockTTS) Synthesize(_ context.Context, _ string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

func (m *mockTTS) ModelID() string {
	if m.id != "" {
		return m.id
	}
	return "mock-tts"
}

// --- Test fixture helpers ---

// newTestLifecycle builds a lifecycle controller with the given budget
// and registers installed models for every descriptor passed.
func newTestLifecycle(budgetMB int, loader driven.ModelLoader, descs ...domain.ModelDescriptor) *ModelLifecycle {
	lc := NewModelLifecycle(budgetMB, loader, nil)
	for _, desc := range descs {
		if err := lc.Register(desc); err != nil {
			panic(err)
		}
		if desc.Installed {
			if err := lc.MarkInstalled(desc.ID, "/models/"+desc.ID+".gguf"); err != nil {
				panic(err)
			}
		}
	}
	return lc
}

func installedModel(id string, kind domain.ModelKind, ramMB int) domain.ModelDescriptor {
	return domain.ModelDescriptor{ID: id, Kind: kind, RAMCostMB: ramMB, Installed: true}
}
