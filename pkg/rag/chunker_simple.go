package rag

import (
	"strings"
)

// SimpleChunker groups whole lines into chunks of the configured size.
// Chunks never split mid-line.
type SimpleChunker struct {
	config ChunkerConfig
}

// NewSimpleChunker creates a new simple chunker.
func NewSimpleChunker(cfg ChunkerConfig) *SimpleChunker {
	cfg.SetDefaults()
	return &SimpleChunker{config: cfg}
}

// Chunk splits content into chunks based on line count.
func (c *SimpleChunker) Chunk(content string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	if len(content) <= c.config.Size {
		return []Chunk{{
			Content:   content,
			StartLine: 1,
			EndLine:   totalLines,
			StartByte: 0,
			EndByte:   len(content),
			Index:     0,
			Total:     1,
		}}, nil
	}

	var chunks []Chunk
	var currentChunk strings.Builder
	chunkStartLine := 1
	chunkStartByte := 0
	currentLine := 1
	currentByte := 0

	for _, line := range lines {
		lineWithNewline := line + "\n"
		lineLen := len(lineWithNewline)

		if currentChunk.Len() > 0 && currentChunk.Len()+lineLen > c.config.Size {
			chunks = append(chunks, Chunk{
				Content:   currentChunk.String(),
				StartLine: chunkStartLine,
				EndLine:   currentLine - 1,
				StartByte: chunkStartByte,
				EndByte:   currentByte,
				Index:     len(chunks),
			})

			currentChunk.Reset()
			chunkStartLine = currentLine
			chunkStartByte = currentByte
		}

		currentChunk.WriteString(lineWithNewline)
		currentLine++
		currentByte += lineLen
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, Chunk{
			Content:   currentChunk.String(),
			StartLine: chunkStartLine,
			EndLine:   totalLines,
			StartByte: chunkStartByte,
			EndByte:   len(content),
			Index:     len(chunks),
		})
	}

	total := len(chunks)
	for i := range chunks {
		chunks[i].Total = total
	}

	return chunks, nil
}

func (c *SimpleChunker) Strategy() ChunkerStrategy {
	return ChunkerSimple
}

func (c *SimpleChunker) Config() ChunkerConfig {
	return c.config
}

var _ Chunker = (*SimpleChunker)(nil)
