package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kadirpekel/lector/pkg/embedder"
	"github.com/kadirpekel/lector/pkg/observability"
	"github.com/kadirpekel/lector/pkg/vector"
)

const (
	// MinQueryLength is the minimum query length after trimming.
	MinQueryLength = 2

	// MaxQueryLength caps queries to keep embedding requests sane.
	MaxQueryLength = 10000
)

// SearchEngineConfig configures a SearchEngine.
type SearchEngineConfig struct {
	// Collection is the vector store collection backing this engine.
	Collection string

	// TopK is the default number of results (default: 5).
	TopK int

	// ScoreThreshold drops results scoring below it (0 keeps everything).
	ScoreThreshold float32

	// Chunker configures document splitting.
	Chunker ChunkerConfig

	// Workers bounds concurrent document ingestion (default: 4).
	Workers int

	Logger *slog.Logger
}

func (c *SearchEngineConfig) SetDefaults() {
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	c.Chunker.SetDefaults()
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// SearchEngine indexes documents into a vector collection and answers
// similarity queries: chunk, embed, upsert on the way in; embed and rank
// on the way out.
type SearchEngine struct {
	provider   vector.Provider
	embedder   embedder.Embedder
	chunker    Chunker
	collection string
	topK       int
	threshold  float32
	workers    int
	logger     *slog.Logger
}

// NewSearchEngine creates a search engine over a vector collection.
func NewSearchEngine(provider vector.Provider, emb embedder.Embedder, cfg SearchEngineConfig) (*SearchEngine, error) {
	if provider == nil {
		return nil, fmt.Errorf("vector provider is required")
	}
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	cfg.SetDefaults()

	chunker, err := NewChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}

	return &SearchEngine{
		provider:   provider,
		embedder:   emb,
		chunker:    chunker,
		collection: cfg.Collection,
		topK:       cfg.TopK,
		threshold:  cfg.ScoreThreshold,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
	}, nil
}

// Collection returns the backing collection name.
func (e *SearchEngine) Collection() string {
	return e.collection
}

// IngestDocument chunks, embeds, and upserts one document. Returns the
// number of chunks indexed.
func (e *SearchEngine) IngestDocument(ctx context.Context, doc Document) (int, error) {
	if doc.ID == "" {
		return 0, NewIndexError(e.collection, "", "validate", "document ID is required", nil)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return 0, NewIndexError(e.collection, doc.ID, "validate", "document content is empty", nil)
	}

	chunks, err := e.chunker.Chunk(doc.Content)
	if err != nil {
		return 0, NewIndexError(e.collection, doc.ID, "chunk", "chunking failed", err)
	}

	for _, chunk := range chunks {
		vec, err := e.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return 0, NewIndexError(e.collection, doc.ID, "embed", "embedding failed", err)
		}

		chunkID := fmt.Sprintf("%s:chunk:%d", doc.ID, chunk.Index)
		metadata := map[string]any{
			"content":       chunk.Content,
			"document_id":   doc.ID,
			"document_name": doc.Name,
			"chunk_index":   chunk.Index,
			"start_line":    chunk.StartLine,
		}
		for k, v := range doc.Metadata {
			metadata[k] = v
		}

		if err := e.provider.Upsert(ctx, e.collection, chunkID, vec, metadata); err != nil {
			return 0, NewIndexError(e.collection, doc.ID, "upsert", "vector upsert failed", err)
		}
	}

	e.logger.Debug("indexed document",
		"collection", e.collection,
		"document", doc.ID,
		"chunks", len(chunks),
	)

	return len(chunks), nil
}

// IngestDocuments indexes a batch of documents with a bounded worker pool.
// Returns the total number of chunks indexed.
func (e *SearchEngine) IngestDocuments(ctx context.Context, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	chunkCounts := make([]int, len(docs))
	for i, doc := range docs {
		g.Go(func() error {
			n, err := e.IngestDocument(gctx, doc)
			chunkCounts[i] = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range chunkCounts {
		total += n
	}

	if m := observability.GetGlobalMetrics(); m != nil {
		m.RecordIngestion(ctx, e.collection, len(docs))
	}

	return total, nil
}

// Search embeds the query and returns the ranked matching chunks.
func (e *SearchEngine) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return nil, NewSearchError("engine", "validate", fmt.Sprintf("query must be at least %d characters", MinQueryLength), query, nil)
	}
	if len(query) > MaxQueryLength {
		return nil, NewSearchError("engine", "validate", fmt.Sprintf("query exceeds %d characters", MaxQueryLength), "", nil)
	}

	tracer := observability.GetTracer("lector.rag")
	ctx, span := tracer.Start(ctx, observability.SpanSearch,
		trace.WithAttributes(
			attribute.String(observability.AttrCollection, e.collection),
		),
	)
	defer span.End()

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, NewSearchError("embedder", "embed", "query embedding failed", query, err)
	}

	results, err := e.provider.Search(ctx, e.collection, vec, e.topK)
	if err != nil {
		return nil, NewSearchError("vector_db", "search", "vector search failed", query, err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if e.threshold > 0 && r.Score < e.threshold {
			continue
		}

		docID := ""
		if id, ok := r.Metadata["document_id"].(string); ok {
			docID = id
		}

		out = append(out, SearchResult{
			DocumentID: docID,
			ChunkID:    r.ID,
			Content:    r.Content,
			Score:      r.Score,
			Metadata:   r.Metadata,
		})
	}

	return out, nil
}

// Drop deletes the backing collection and all its vectors.
func (e *SearchEngine) Drop(ctx context.Context) error {
	return e.provider.DeleteCollection(ctx, e.collection)
}
