package rag

import "fmt"

// ChunkerStrategy identifies a chunking strategy.
type ChunkerStrategy string

const (
	// ChunkerSimple splits content into fixed-size line groups.
	ChunkerSimple ChunkerStrategy = "simple"

	// ChunkerOverlapping splits with overlap between chunks so context is
	// preserved at boundaries. This is the default for retrieval.
	ChunkerOverlapping ChunkerStrategy = "overlapping"
)

// Chunker splits content into smaller pieces for indexing.
type Chunker interface {
	// Chunk splits content according to the chunker's strategy. Returned
	// chunks are ordered by position in the original content.
	Chunk(content string) ([]Chunk, error)

	// Strategy returns the chunker strategy name.
	Strategy() ChunkerStrategy

	// Config returns the chunker configuration.
	Config() ChunkerConfig
}

// ChunkerConfig configures chunking behavior.
type ChunkerConfig struct {
	// Strategy is "simple" or "overlapping" (default: overlapping).
	Strategy ChunkerStrategy `yaml:"strategy,omitempty"`

	// Size is the target chunk size in characters (default: 1000).
	Size int `yaml:"size,omitempty"`

	// Overlap is the overlap size in characters (default: 200).
	Overlap int `yaml:"overlap,omitempty"`
}

// SetDefaults applies default values.
func (c *ChunkerConfig) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = ChunkerOverlapping
	}
	if c.Size <= 0 {
		c.Size = 1000
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
}

// Validate checks the configuration for errors.
func (c *ChunkerConfig) Validate() error {
	switch c.Strategy {
	case ChunkerSimple, ChunkerOverlapping, "":
	default:
		return fmt.Errorf("invalid chunker strategy: %q", c.Strategy)
	}

	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must be non-negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("overlap (%d) must be less than size (%d)", c.Overlap, c.Size)
	}

	return nil
}

// NewChunker creates a chunker from configuration.
func NewChunker(cfg ChunkerConfig) (Chunker, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}

	switch cfg.Strategy {
	case ChunkerSimple:
		return NewSimpleChunker(cfg), nil
	default:
		return NewOverlappingChunker(cfg), nil
	}
}

func countLines(content string) int {
	if len(content) == 0 {
		return 0
	}
	lines := 1
	for _, c := range content {
		if c == '\n' {
			lines++
		}
	}
	return lines
}
