package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
)

func TestModelLifecycle_Register(t *testing.T) {
	t.Run("rejects invalid descriptors", func(t *testing.T) {
		lc := NewModelLifecycle(1000, &mockLoader{}, nil)

		err := lc.Register(domain.ModelDescriptor{Kind: domain.ModelKindEmbedding, RAMCostMB: 100})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		err = lc.Register(domain.ModelDescriptor{ID: "m", Kind: "bogus", RAMCostMB: 100})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		err = lc.Register(domain.ModelDescriptor{ID: "m", Kind: domain.ModelKindEmbedding})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		lc := NewModelLifecycle(1000, &mockLoader{}, nil)
		desc := installedModel("embed", domain.ModelKindEmbedding, 100)

		require.NoError(t, lc.Register(desc))
		err := lc.Register(desc)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("never restores loaded state", func(t *testing.T) {
		lc := NewModelLifecycle(1000, &mockLoader{}, nil)
		desc := installedModel("embed", domain.ModelKindEmbedding, 100)
		desc.Loaded = true

		require.NoError(t, lc.Register(desc))
		got, err := lc.Get("embed")
		require.NoError(t, err)
		assert.False(t, got.Loaded)
	})
}

func TestModelLifecycle_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("loads an installed model", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		handle, err := lc.Acquire(ctx, "embed")
		require.NoError(t, err)
		assert.Equal(t, "embed", handle.ModelID())
		assert.Equal(t, 500, lc.LoadedRAMMB())
		assert.Equal(t, 1, loader.loadCount())
	})

	t.Run("second acquire is idempotent", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		_, err := lc.Acquire(ctx, "embed")
		require.NoError(t, err)
		_, err = lc.Acquire(ctx, "embed")
		require.NoError(t, err)

		// One load, one RAM charge.
		assert.Equal(t, 1, loader.loadCount())
		assert.Equal(t, 500, lc.LoadedRAMMB())
	})

	t.Run("unknown model", func(t *testing.T) {
		lc := newTestLifecycle(1000, &mockLoader{})

		_, err := lc.Acquire(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("not installed", func(t *testing.T) {
		lc := NewModelLifecycle(1000, &mockLoader{}, nil)
		require.NoError(t, lc.Register(domain.ModelDescriptor{
			ID: "embed", Kind: domain.ModelKindEmbedding, RAMCostMB: 500,
		}))

		_, err := lc.Acquire(ctx, "embed")
		assert.ErrorIs(t, err, domain.ErrNotInstalled)
	})

	t.Run("load failure surfaces as model unavailable", func(t *testing.T) {
		loader := &mockLoader{loadErr: errors.New("runtime down")}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		_, err := lc.Acquire(ctx, "embed")
		assert.ErrorIs(t, err, domain.ErrModelUnavailable)

		// Failed load charges no RAM and a later acquire retries.
		assert.Equal(t, 0, lc.LoadedRAMMB())
		loader.loadErr = nil
		_, err = lc.Acquire(ctx, "embed")
		require.NoError(t, err)
		assert.Equal(t, 500, lc.LoadedRAMMB())
	})

	t.Run("concurrent acquires share one load", func(t *testing.T) {
		loader := &mockLoader{loadHook: func(string) { time.Sleep(50 * time.Millisecond) }}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := lc.Acquire(ctx, "embed")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, loader.loadCount())
		assert.Equal(t, 500, lc.LoadedRAMMB())
	})
}

func TestModelLifecycle_Eviction(t *testing.T) {
	ctx := context.Background()

	t.Run("evicts released model to make headroom", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("small", domain.ModelKindEmbedding, 500),
			installedModel("large", domain.ModelKindSpeechToText, 700))

		_, err := lc.Acquire(ctx, "small")
		require.NoError(t, err)
		lc.Release("small")

		_, err = lc.Acquire(ctx, "large")
		require.NoError(t, err)

		assert.Equal(t, []string{"small"}, loader.unloaded())
		assert.Equal(t, 700, lc.LoadedRAMMB())
	})

	t.Run("evicts least recently used first", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("a", domain.ModelKindEmbedding, 300),
			installedModel("b", domain.ModelKindSpeechToText, 300),
			installedModel("c", domain.ModelKindSpeechSynthesis, 300),
			installedModel("d", domain.ModelKindEmbedding, 400))

		for _, id := range []string{"a", "b", "c"} {
			_, err := lc.Acquire(ctx, id)
			require.NoError(t, err)
			lc.Release(id)
		}

		// Touch a so b becomes the LRU.
		_, err := lc.Acquire(ctx, "a")
		require.NoError(t, err)
		lc.Release("a")

		_, err = lc.Acquire(ctx, "d")
		require.NoError(t, err)

		assert.Equal(t, []string{"b"}, loader.unloaded())
		assert.Equal(t, 1000, lc.LoadedRAMMB())
	})

	t.Run("never evicts a generation model", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("gen", domain.ModelKindGeneration, 700),
			installedModel("embed", domain.ModelKindEmbedding, 500))

		_, err := lc.Acquire(ctx, "gen")
		require.NoError(t, err)
		lc.Release("gen")

		_, err = lc.Acquire(ctx, "embed")
		assert.ErrorIs(t, err, domain.ErrInsufficientMemory)
		assert.Empty(t, loader.unloaded())
		assert.Equal(t, 700, lc.LoadedRAMMB())
	})

	t.Run("never evicts a held model", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("held", domain.ModelKindEmbedding, 700),
			installedModel("next", domain.ModelKindSpeechToText, 500))

		_, err := lc.Acquire(ctx, "held")
		require.NoError(t, err)

		// Fails immediately rather than waiting for a release.
		_, err = lc.Acquire(ctx, "next")
		assert.ErrorIs(t, err, domain.ErrInsufficientMemory)
		assert.Empty(t, loader.unloaded())
	})
}

func TestModelLifecycle_Unload(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while held", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		_, err := lc.Acquire(ctx, "embed")
		require.NoError(t, err)

		err = lc.Unload(ctx, "embed")
		assert.ErrorIs(t, err, domain.ErrModelInUse)

		lc.Release("embed")
		require.NoError(t, lc.Unload(ctx, "embed"))
		assert.Equal(t, 0, lc.LoadedRAMMB())
	})

	t.Run("no-op when not loaded", func(t *testing.T) {
		loader := &mockLoader{}
		lc := newTestLifecycle(1000, loader,
			installedModel("embed", domain.ModelKindEmbedding, 500))

		require.NoError(t, lc.Unload(ctx, "embed"))
		assert.Empty(t, loader.unloaded())
	})

	t.Run("unknown model", func(t *testing.T) {
		lc := newTestLifecycle(1000, &mockLoader{})
		assert.ErrorIs(t, lc.Unload(ctx, "missing"), domain.ErrNotFound)
	})
}

func TestModelLifecycle_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while loaded", func(t *testing.T) {
		lc := newTestLifecycle(1000, &mockLoader{},
			installedModel("embed", domain.ModelKindEmbedding, 500))

		_, err := lc.Acquire(ctx, "embed")
		require.NoError(t, err)
		lc.Release("embed")

		assert.ErrorIs(t, lc.Delete(ctx, "embed"), domain.ErrModelInUse)

		require.NoError(t, lc.Unload(ctx, "embed"))
		require.NoError(t, lc.Delete(ctx, "embed"))

		_, err = lc.Acquire(ctx, "embed")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
