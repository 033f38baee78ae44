package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRegistry records MarkInstalled calls.
type mockRegistry struct {
	installed map[string]string
	err       error
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{installed: make(map[string]string)}
}

func (m *mockRegistry) MarkInstalled(id, storagePath string) error {
	if m.err != nil {
		return m.err
	}
	m.installed[id] = storagePath
	return nil
}

func TestWatcher_Sync(t *testing.T) {
	t.Run("records existing artifacts", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "qwen2.5-3b.gguf"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "whisper-small.bin"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.gguf"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.gguf.part"), []byte("x"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

		registry := newMockRegistry()
		watcher := NewWatcher(dir, registry)

		require.NoError(t, watcher.Sync())

		assert.Len(t, registry.installed, 2)
		assert.Equal(t, filepath.Join(dir, "qwen2.5-3b.gguf"), registry.installed["qwen2.5-3b"])
		assert.Equal(t, filepath.Join(dir, "whisper-small.bin"), registry.installed["whisper-small"])
	})

	t.Run("missing directory", func(t *testing.T) {
		watcher := NewWatcher(filepath.Join(t.TempDir(), "nope"), newMockRegistry())
		assert.Error(t, watcher.Sync())
	})
}

func TestWatcher_HandleFsEvent(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		setupFile bool
		setupDir  bool
		operation fsnotify.Op
		expected  []string
	}{
		{
			name:      "create artifact",
			fileName:  "piper-th.onnx",
			setupFile: true,
			operation: fsnotify.Create,
			expected:  []string{"piper-th"},
		},
		{
			name:      "write artifact",
			fileName:  "piper-th.onnx",
			setupFile: true,
			operation: fsnotify.Write,
			expected:  []string{"piper-th"},
		},
		{
			name:      "remove is ignored",
			fileName:  "piper-th.onnx",
			operation: fsnotify.Remove,
			expected:  nil,
		},
		{
			name:      "chmod is ignored",
			fileName:  "piper-th.onnx",
			setupFile: true,
			operation: fsnotify.Chmod,
			expected:  nil,
		},
		{
			name:      "directory is skipped",
			fileName:  "newdir",
			setupDir:  true,
			operation: fsnotify.Create,
			expected:  nil,
		},
		{
			name:      "hidden file is skipped",
			fileName:  ".download.gguf",
			setupFile: true,
			operation: fsnotify.Create,
			expected:  nil,
		},
		{
			name:      "in-progress download is skipped",
			fileName:  "qwen2.5-3b.gguf.part",
			setupFile: true,
			operation: fsnotify.Create,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.fileName)
			if tt.setupDir {
				require.NoError(t, os.Mkdir(path, 0755))
			} else if tt.setupFile {
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
			}

			registry := newMockRegistry()
			watcher := NewWatcher(dir, registry)

			watcher.handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			var got []string
			for id := range registry.installed {
				got = append(got, id)
			}
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}
