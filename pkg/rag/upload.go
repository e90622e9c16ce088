package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/lector/pkg/embedder"
	"github.com/kadirpekel/lector/pkg/vector"
)

// UploadedFile is a file handle presented by the caller: a name plus
// either an on-disk path or in-memory content.
type UploadedFile struct {
	Name    string
	Path    string
	Content []byte
}

// UploadIndex is the result of building an ad-hoc index over an uploaded
// batch: a search engine over a fresh collection, plus the files that
// could not be loaded.
type UploadIndex struct {
	Engine    *SearchEngine
	Documents int
	Skipped   []*FileLoadError
}

// UploadBuilderConfig configures an UploadIndexBuilder.
type UploadBuilderConfig struct {
	// Chunker, TopK, ScoreThreshold, and Workers are passed through to the
	// engine built for each batch.
	Chunker        ChunkerConfig
	TopK           int
	ScoreThreshold float32
	Workers        int

	// TempDir hosts temporary files for in-memory uploads. Empty uses the
	// system default.
	TempDir string

	Logger *slog.Logger
}

// UploadIndexBuilder turns a batch of uploaded files into one searchable
// index. Files that fail to load are skipped and reported, not fatal; a
// batch with zero usable documents fails with EmptyContentError. Temporary
// files created for in-memory content are removed on every exit path.
type UploadIndexBuilder struct {
	provider vector.Provider
	embedder embedder.Embedder
	config   UploadBuilderConfig
	logger   *slog.Logger
}

// NewUploadIndexBuilder creates a builder over the given backends.
func NewUploadIndexBuilder(provider vector.Provider, emb embedder.Embedder, cfg UploadBuilderConfig) *UploadIndexBuilder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadIndexBuilder{
		provider: provider,
		embedder: emb,
		config:   cfg,
		logger:   logger,
	}
}

// Build loads every uploaded file, chunks and embeds the successful ones,
// and indexes them all into one fresh collection.
func (b *UploadIndexBuilder) Build(ctx context.Context, files []UploadedFile) (_ *UploadIndex, err error) {
	var tempFiles []string
	defer func() {
		for _, path := range tempFiles {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				b.logger.Warn("failed to remove temporary file", "file", path, "error", rmErr)
			}
		}
	}()

	var docs []Document
	var skipped []*FileLoadError

	for i, file := range files {
		path := file.Path
		if path == "" {
			if len(file.Content) == 0 {
				skipped = append(skipped, NewFileLoadError(file.Name, errors.New("no path or content provided")))
				continue
			}

			tmpPath, tmpErr := b.writeTemp(file)
			if tmpPath != "" {
				tempFiles = append(tempFiles, tmpPath)
			}
			if tmpErr != nil {
				return nil, fmt.Errorf("failed to stage uploaded file %s: %w", file.Name, tmpErr)
			}
			path = tmpPath
		}

		content, loadErr := ExtractText(ctx, path)
		if loadErr != nil {
			fileErr := NewFileLoadError(file.Name, loadErr)
			skipped = append(skipped, fileErr)
			b.logger.Warn("skipping uploaded file", "file", file.Name, "error", loadErr)
			continue
		}
		if strings.TrimSpace(content) == "" {
			skipped = append(skipped, NewFileLoadError(file.Name, errors.New("no text content")))
			continue
		}

		docs = append(docs, Document{
			ID:      fmt.Sprintf("upload-%d-%s", i, file.Name),
			Name:    file.Name,
			Content: content,
			Metadata: map[string]string{
				"source": "upload",
				"file":   file.Name,
			},
		})
	}

	if len(docs) == 0 {
		return nil, NewEmptyContentError("uploaded files")
	}

	engine, err := NewSearchEngine(b.provider, b.embedder, SearchEngineConfig{
		Collection:     "uploads-" + uuid.NewString(),
		TopK:           b.config.TopK,
		ScoreThreshold: b.config.ScoreThreshold,
		Chunker:        b.config.Chunker,
		Workers:        b.config.Workers,
		Logger:         b.logger,
	})
	if err != nil {
		return nil, err
	}

	if _, err := engine.IngestDocuments(ctx, docs); err != nil {
		return nil, err
	}

	b.logger.Info("built ad-hoc upload index",
		"collection", engine.Collection(),
		"documents", len(docs),
		"skipped", len(skipped),
	)

	return &UploadIndex{
		Engine:    engine,
		Documents: len(docs),
		Skipped:   skipped,
	}, nil
}

// writeTemp stages in-memory content to a temporary file, preserving the
// original extension so loader dispatch still works.
func (b *UploadIndexBuilder) writeTemp(file UploadedFile) (string, error) {
	tmp, err := os.CreateTemp(b.config.TempDir, "upload-*"+filepath.Ext(file.Name))
	if err != nil {
		return "", err
	}

	if _, err := tmp.Write(file.Content); err != nil {
		tmp.Close()
		return tmp.Name(), err
	}
	if err := tmp.Close(); err != nil {
		return tmp.Name(), err
	}

	return tmp.Name(), nil
}
