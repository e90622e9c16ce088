// Package vector abstracts vector database backends behind a single
// Provider interface. Embeddings are always computed externally and passed
// in pre-computed; providers only store and search them.
package vector

import "context"

// Result is a single similarity search hit.
type Result struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]any
}

// Provider is the storage backend for vector similarity search.
type Provider interface {
	// Upsert adds or updates a document with its pre-computed vector.
	Upsert(ctx context.Context, collection string, id string, vector []float32, metadata map[string]any) error

	// Search finds the topK most similar vectors in a collection.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	// SearchWithFilter combines vector similarity with metadata filtering.
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)

	// Delete removes a document by ID.
	Delete(ctx context.Context, collection string, id string) error

	// DeleteByFilter removes all documents matching the filter.
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error

	// CreateCollection creates a collection with the given vector dimension.
	CreateCollection(ctx context.Context, collection string, vectorDimension int) error

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// Name returns the provider name.
	Name() string

	// Close releases resources and flushes any pending state.
	Close() error
}

// Config selects and configures a provider backend.
type Config struct {
	// Provider is "chromem" (embedded, default) or "qdrant".
	Provider string `yaml:"provider"`

	// Path enables file persistence for the embedded provider.
	Path string `yaml:"path,omitempty"`

	Host   string `yaml:"host,omitempty"`
	Port   int    `yaml:"port,omitempty"`
	APIKey string `yaml:"api_key,omitempty"`
	UseTLS bool   `yaml:"use_tls,omitempty"`
}
