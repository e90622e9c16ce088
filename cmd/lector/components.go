package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/lector/pkg/config"
	"github.com/kadirpekel/lector/pkg/embedder"
	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/rag"
	"github.com/kadirpekel/lector/pkg/vector"
)

// components holds the shared backends a command needs: the language model,
// the embedder, and the vector store.
type components struct {
	llm      llms.LLM
	embedder embedder.Embedder
	provider vector.Provider
}

func buildComponents(cfg *config.Config) (*components, error) {
	llm, err := llms.NewOpenAIProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm: %w", err)
	}

	emb, err := embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{
		APIKey:    cfg.Embedder.APIKey,
		BaseURL:   cfg.Embedder.BaseURL,
		Model:     cfg.Embedder.Model,
		Dimension: cfg.Embedder.Dimension,
		BatchSize: cfg.Embedder.BatchSize,
		Timeout:   cfg.Embedder.Timeout,
	})
	if err != nil {
		llm.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	provider, err := vector.New(vector.Config{
		Provider: cfg.VectorStore.Provider,
		Path:     cfg.VectorStore.Path,
		Host:     cfg.VectorStore.Host,
		Port:     cfg.VectorStore.Port,
		APIKey:   cfg.VectorStore.APIKey,
		UseTLS:   cfg.VectorStore.UseTLS,
	})
	if err != nil {
		emb.Close()
		llm.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	return &components{llm: llm, embedder: emb, provider: provider}, nil
}

func (c *components) Close() {
	c.provider.Close()
	c.embedder.Close()
	c.llm.Close()
}

func chunkerConfig(cfg *config.Config) rag.ChunkerConfig {
	return rag.ChunkerConfig{
		Strategy: rag.ChunkerStrategy(cfg.RAG.ChunkStrategy),
		Size:     cfg.RAG.ChunkSize,
		Overlap:  cfg.RAG.ChunkOverlap,
	}
}

// knowledgeEngine builds the search engine over the preload collection and
// ingests the configured directory. A missing or empty preload directory is
// not fatal: the session runs without preloaded retrieval.
func knowledgeEngine(ctx context.Context, cfg *config.Config, c *components) (*rag.SearchEngine, error) {
	if cfg.Preload.Directory == "" {
		return nil, nil
	}

	engine, err := rag.NewSearchEngine(c.provider, c.embedder, rag.SearchEngineConfig{
		Collection:     cfg.Preload.Collection,
		TopK:           cfg.RAG.TopK,
		ScoreThreshold: cfg.RAG.ScoreThreshold,
		Chunker:        chunkerConfig(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge engine: %w", err)
	}

	count, err := rag.LoadDirectory(ctx, engine, cfg.Preload.Directory)
	if err != nil {
		var missing *rag.ConfigurationMissingError
		if errors.As(err, &missing) {
			slog.Warn("preload skipped", "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to preload documents: %w", err)
	}
	slog.Info("preloaded knowledge base", "directory", cfg.Preload.Directory, "documents", count)

	if cfg.Preload.Watch {
		watcher := rag.NewDirectoryWatcher(engine, cfg.Preload.Directory)
		go func() {
			if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("preload watch stopped", "error", err)
			}
		}()
	}

	return engine, nil
}

func uploadBuilder(cfg *config.Config, c *components) *rag.UploadIndexBuilder {
	return rag.NewUploadIndexBuilder(c.provider, c.embedder, rag.UploadBuilderConfig{
		Chunker:        chunkerConfig(cfg),
		TopK:           cfg.RAG.TopK,
		ScoreThreshold: cfg.RAG.ScoreThreshold,
	})
}
