package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// preloadExtensions are the file types picked up from the preload
// directory.
var preloadExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// LoadDirectory reads every matching file from dir and ingests it into the
// engine. A missing directory or an empty one yields a
// ConfigurationMissingError; callers treat that as non-fatal and proceed
// without preloaded retrieval. Unreadable files are skipped with a warning.
// Returns the number of documents indexed.
func LoadDirectory(ctx context.Context, engine *SearchEngine, dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, NewConfigurationMissingError(dir, "preload directory does not exist")
		}
		return 0, fmt.Errorf("failed to access preload directory: %w", err)
	}
	if !info.IsDir() {
		return 0, NewConfigurationMissingError(dir, "preload path is not a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read preload directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !preloadExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := ExtractText(ctx, path)
		if err != nil {
			engine.logger.Warn("skipping unreadable preload file",
				"file", path,
				"error", NewFileLoadError(entry.Name(), err),
			)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		docs = append(docs, Document{
			ID:      entry.Name(),
			Name:    entry.Name(),
			Content: content,
			Metadata: map[string]string{
				"source": "preload",
				"path":   path,
			},
		})
	}

	if len(docs) == 0 {
		return 0, NewConfigurationMissingError(dir, "no matching files in preload directory")
	}

	if _, err := engine.IngestDocuments(ctx, docs); err != nil {
		return 0, err
	}

	engine.logger.Info("preloaded knowledge directory",
		"dir", dir,
		"documents", len(docs),
	)

	return len(docs), nil
}

// DirectoryWatcher re-ingests preload files as they change on disk.
type DirectoryWatcher struct {
	engine *SearchEngine
	dir    string
	logger *slog.Logger
}

// NewDirectoryWatcher creates a watcher for the preload directory.
func NewDirectoryWatcher(engine *SearchEngine, dir string) *DirectoryWatcher {
	return &DirectoryWatcher{
		engine: engine,
		dir:    dir,
		logger: engine.logger,
	}
}

// Watch blocks until ctx is cancelled, re-ingesting files on create and
// write events.
func (w *DirectoryWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info("watching preload directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !preloadExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.reingest(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *DirectoryWatcher) reingest(ctx context.Context, path string) {
	content, err := ExtractText(ctx, path)
	if err != nil {
		w.logger.Warn("failed to reload changed file", "file", path, "error", err)
		return
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	name := filepath.Base(path)
	if _, err := w.engine.IngestDocument(ctx, Document{
		ID:      name,
		Name:    name,
		Content: content,
		Metadata: map[string]string{
			"source": "preload",
			"path":   path,
		},
	}); err != nil {
		w.logger.Warn("failed to reindex changed file", "file", path, "error", err)
		return
	}

	w.logger.Info("reindexed changed file", "file", path)
}
