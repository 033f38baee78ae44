// Package models watches the local model directory and records
// artifact installs with the lifecycle controller. Artifacts arrive
// out-of-band (copied in by the user or a downloader); the watcher is
// how the engine notices them.
package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Registry receives install notifications. Satisfied by the lifecycle
// controller.
type Registry interface {
	MarkInstalled(id, storagePath string) error
}

// Watcher monitors a directory for model artifact files. A file named
// <model-id>.<ext> marks the model <model-id> as installed.
type Watcher struct {
	dir      string
	registry Registry
}

// NewWatcher creates a watcher for the given model directory.
func NewWatcher(dir string, registry Registry) *Watcher {
	return &Watcher{dir: dir, registry: registry}
}

// Sync scans the directory once and records every artifact already
// present. Called at startup before Watch.
func (w *Watcher) Sync() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read model dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.recordArtifact(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// Watch blocks, recording installs as artifact files appear, until the
// context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("Watching model directory %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Model watcher error: %v", err)
		}
	}
}

// handleFsEvent records an install when a new artifact file lands.
// Removals are ignored; uninstalling goes through the model delete
// command.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}
	w.recordArtifact(event.Name)
}

// recordArtifact maps an artifact path to a model ID and marks it
// installed. Hidden files and in-progress downloads are skipped.
func (w *Watcher) recordArtifact(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}
	ext := filepath.Ext(name)
	if ext == ".part" || ext == ".tmp" {
		return
	}

	id := strings.TrimSuffix(name, ext)
	if id == "" {
		return
	}

	if err := w.registry.MarkInstalled(id, path); err != nil {
		// Unregistered files in the directory are not an error.
		logger.Debug("Ignoring artifact %s: %v", name, err)
	}
}
