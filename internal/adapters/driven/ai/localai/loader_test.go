package localai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

func testDescriptor() domain.ModelDescriptor {
	return domain.ModelDescriptor{
		ID:          "qwen2.5-3b",
		Kind:        domain.ModelKindGeneration,
		RAMCostMB:   2500,
		StoragePath: "/models/qwen2.5-3b.gguf",
		Installed:   true,
	}
}

func newTestClient(serverURL string) *Client {
	return NewClient(Config{BaseURL: serverURL + "/v1"})
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("posts model and path to the runtime", func(t *testing.T) {
		var got loadRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models/load", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		loader := NewLoader(newTestClient(server.URL))
		handle, err := loader.Load(ctx, testDescriptor())
		require.NoError(t, err)

		assert.Equal(t, "qwen2.5-3b", handle.ModelID())
		assert.Equal(t, "qwen2.5-3b", got.Model)
		assert.Equal(t, "/models/qwen2.5-3b.gguf", got.Path)
	})

	t.Run("retries transient runtime errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		loader := NewLoader(newTestClient(server.URL))
		_, err := loader.Load(ctx, testDescriptor())
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		loader := NewLoader(newTestClient(server.URL))
		_, err := loader.Load(ctx, testDescriptor())
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		loader := NewLoader(newTestClient(server.URL))
		_, err := loader.Load(cancelled, testDescriptor())
		require.Error(t, err)
	})
}

func TestLoader_Unload(t *testing.T) {
	ctx := context.Background()

	var got loadRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/unload", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	loader := NewLoader(newTestClient(server.URL))
	require.NoError(t, loader.Unload(ctx, testDescriptor()))
	assert.Equal(t, "qwen2.5-3b", got.Model)
}

func TestTrimV1(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8311", trimV1("http://127.0.0.1:8311/v1"))
	assert.Equal(t, "http://localhost", trimV1("http://localhost"))
}
