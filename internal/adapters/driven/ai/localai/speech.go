package localai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
)

// Ensure the speech providers implement the interfaces.
var (
	_ driven.SpeechToTextProvider    = (*SpeechToTextProvider)(nil)
	_ driven.SpeechSynthesisProvider = (*SpeechSynthesisProvider)(nil)
)

// SpeechToTextProvider transcribes audio through the runtime's
// transcription endpoint.
type SpeechToTextProvider struct {
	client  *Client
	modelID string
}

// NewSpeechToTextProvider creates a speech-to-text provider for the
// given catalogued model.
func NewSpeechToTextProvider(client *Client, modelID string) *SpeechToTextProvider {
	return &SpeechToTextProvider{client: client, modelID: modelID}
}

// transcriptionResponse is the runtime's transcription result format.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts spoken audio into text.
func (p *SpeechToTextProvider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := writer.WriteField("model", p.modelID); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.client.baseURL+"/audio/transcriptions",
		&body,
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("runtime error (status %d): %s", resp.StatusCode, string(msg))
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Text, nil
}

// ModelID returns the lifecycle catalog ID of the backing model.
func (p *SpeechToTextProvider) ModelID() string {
	return p.modelID
}

// SpeechSynthesisProvider produces audio through the runtime's speech
// endpoint.
type SpeechSynthesisProvider struct {
	client  *Client
	modelID string
	voice   string
}

// NewSpeechSynthesisProvider creates a speech-synthesis provider for
// the given catalogued model. voice may be empty for the runtime's
// default.
func NewSpeechSynthesisProvider(client *Client, modelID, voice string) *SpeechSynthesisProvider {
	return &SpeechSynthesisProvider{client: client, modelID: modelID, voice: voice}
}

// speechRequest is the runtime's speech synthesis request format.
type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice,omitempty"`
}

// Synthesize converts text into audio bytes.
func (p *SpeechSynthesisProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	jsonBody, err := json.Marshal(speechRequest{
		Model: p.modelID,
		Input: text,
		Voice: p.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.client.baseURL+"/audio/speech",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("runtime error (status %d): %s", resp.StatusCode, string(msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

// ModelID returns the lifecycle catalog ID of the backing model.
func (p *SpeechSynthesisProvider) ModelID() string {
	return p.modelID
}
