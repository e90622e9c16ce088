package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kadirpekel/lector/pkg/rag"
)

// IndexCmd ingests a directory of documents into a collection so later
// sessions can search it.
type IndexCmd struct {
	Directory  string `arg:"" help:"Directory of documents to index." type:"path"`
	Collection string `help:"Target collection (default: the configured preload collection)."`
}

func (c *IndexCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	collection := c.Collection
	if collection == "" {
		collection = cfg.Preload.Collection
	}

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	engine, err := rag.NewSearchEngine(comps.provider, comps.embedder, rag.SearchEngineConfig{
		Collection:     collection,
		TopK:           cfg.RAG.TopK,
		ScoreThreshold: cfg.RAG.ScoreThreshold,
		Chunker:        chunkerConfig(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	count, err := rag.LoadDirectory(ctx, engine, c.Directory)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents from %s into collection %q\n", count, c.Directory, collection)
	return nil
}
