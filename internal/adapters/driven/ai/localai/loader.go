package localai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.ModelLoader = (*Loader)(nil)

// Loader loads and unloads model artifacts through the runtime's model
// management API. Only the lifecycle controller calls it.
type Loader struct {
	client *Client
}

// NewLoader creates a model loader backed by the runtime.
func NewLoader(client *Client) *Loader {
	return &Loader{client: client}
}

// handle is the runtime-backed model handle.
type handle struct {
	id string
}

func (h *handle) ModelID() string { return h.id }

// loadRequest is the runtime's model load request format.
type loadRequest struct {
	Model string `json:"model"`
	Path  string `json:"path,omitempty"`
}

// Load asks the runtime to make the model resident. Transient
// failures (the runtime still settling a previous unload) are retried
// with exponential backoff.
func (l *Loader) Load(ctx context.Context, desc domain.ModelDescriptor) (driven.ModelHandle, error) {
	operation := func() error {
		return l.post(ctx, "/models/load", loadRequest{Model: desc.ID, Path: desc.StoragePath})
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 60 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("load %s: %w", desc.ID, err)
	}

	logger.Debug("Runtime loaded model %s", desc.ID)
	return &handle{id: desc.ID}, nil
}

// Unload asks the runtime to release the model's memory.
func (l *Loader) Unload(ctx context.Context, desc domain.ModelDescriptor) error {
	if err := l.post(ctx, "/models/unload", loadRequest{Model: desc.ID}); err != nil {
		return fmt.Errorf("unload %s: %w", desc.ID, err)
	}
	logger.Debug("Runtime unloaded model %s", desc.ID)
	return nil
}

// post sends one JSON request to the runtime's management API.
func (l *Loader) post(ctx context.Context, path string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		l.client.adminURL+path,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("runtime error (status %d): %s", resp.StatusCode, string(msg))

	// 4xx responses will not heal on retry.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}
