// Package localai adapts a loopback OpenAI-compatible inference
// runtime (llama.cpp / llamafile style) to the engine's provider and
// loader ports. Everything runs on-device; the runtime listens on
// localhost only and no network access is involved.
package localai

import (
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://127.0.0.1:8311/v1"
	DefaultTimeout = 120 * time.Second
)

// Config holds connection settings for the local inference runtime.
type Config struct {
	// BaseURL is the runtime's OpenAI-compatible API root
	// (default: http://127.0.0.1:8311/v1).
	BaseURL string

	// AdminURL is the runtime's model management API root. Defaults to
	// BaseURL with the /v1 suffix stripped.
	AdminURL string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Client wraps the OpenAI-compatible API client and the runtime's
// model management endpoint.
type Client struct {
	api      openai.Client
	http     *http.Client
	baseURL  string
	adminURL string
}

// NewClient creates a client for the local inference runtime.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AdminURL == "" {
		cfg.AdminURL = trimV1(cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	api := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey("local"), // the runtime ignores the key
		option.WithHTTPClient(httpClient),
	)

	return &Client{
		api:      api,
		http:     httpClient,
		baseURL:  cfg.BaseURL,
		adminURL: cfg.AdminURL,
	}
}

// trimV1 strips a trailing /v1 from the base URL.
func trimV1(url string) string {
	const suffix = "/v1"
	if len(url) >= len(suffix) && url[len(url)-len(suffix):] == suffix {
		return url[:len(url)-len(suffix)]
	}
	return url
}
