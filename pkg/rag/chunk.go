// Package rag implements the retrieval pipeline: document extraction,
// chunking, embedding-backed indexing, and similarity search over a vector
// store. It also builds the preloaded knowledge index and ad-hoc indexes
// from uploaded files.
package rag

// Document is a text source to be indexed.
type Document struct {
	// ID uniquely identifies the document within a collection.
	ID string

	// Name is the human-readable source name (file name, path).
	Name string

	// Content is the full extracted text.
	Content string

	// Metadata is attached to every chunk of the document.
	Metadata map[string]string
}

// Chunk is one indexable piece of a document, with position information
// for source mapping.
type Chunk struct {
	Content string

	// Index is the chunk's position in the document, Total the chunk count.
	Index int
	Total int

	// Line and byte ranges in the original content (1-indexed lines).
	StartLine int
	EndLine   int
	StartByte int
	EndByte   int
}

// SearchResult is one ranked hit from a similarity search.
type SearchResult struct {
	DocumentID string
	ChunkID    string
	Content    string
	Score      float32
	Metadata   map[string]any
}
