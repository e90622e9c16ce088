package rag

import (
	"strings"
)

// OverlappingChunker chunks line groups with configurable overlap between
// consecutive chunks. Overlap preserves context at chunk boundaries, which
// improves retrieval when relevant information spans two chunks.
type OverlappingChunker struct {
	config ChunkerConfig
}

// NewOverlappingChunker creates a new overlapping chunker.
func NewOverlappingChunker(cfg ChunkerConfig) *OverlappingChunker {
	cfg.SetDefaults()
	if cfg.Overlap <= 0 {
		cfg.Overlap = cfg.Size / 5
	}
	return &OverlappingChunker{config: cfg}
}

// Chunk splits content into overlapping chunks.
func (c *OverlappingChunker) Chunk(content string) ([]Chunk, error) {
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
	var overlapBuffer strings.Builder
	chunkStartLine := 1
	chunkStartByte := 0
	currentLine := 1
	currentByte := 0
	var overlapStartLine int

	for _, line := range lines {
		lineWithNewline := line + "\n"
		lineLen := len(lineWithNewline)

		currentChunk.WriteString(lineWithNewline)

		if currentChunk.Len() >= c.config.Size {
			chunks = append(chunks, Chunk{
				Content:   currentChunk.String(),
				StartLine: chunkStartLine,
				EndLine:   currentLine,
				StartByte: chunkStartByte,
				EndByte:   currentByte + lineLen,
				Index:     len(chunks),
			})

			if c.config.Overlap > 0 {
				// Collect trailing lines of the finished chunk as the
				// start of the next one.
				overlapBuffer.Reset()
				overlapSize := 0
				overlapStartLine = currentLine

				for i := currentLine - 1; i >= chunkStartLine && overlapSize < c.config.Overlap; i-- {
					if i-1 < len(lines) {
						overlapLine := lines[i-1] + "\n"
						overlapSize += len(overlapLine)
						temp := overlapLine + overlapBuffer.String()
						overlapBuffer.Reset()
						overlapBuffer.WriteString(temp)
						overlapStartLine = i
					}
				}

				currentChunk.Reset()
				currentChunk.WriteString(overlapBuffer.String())
				chunkStartLine = overlapStartLine
				chunkStartByte = currentByte + lineLen - overlapBuffer.Len()
			} else {
				currentChunk.Reset()
				chunkStartLine = currentLine + 1
				chunkStartByte = currentByte + lineLen
			}
		}

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

func (c *OverlappingChunker) Strategy() ChunkerStrategy {
	return ChunkerOverlapping
}

func (c *OverlappingChunker) Config() ChunkerConfig {
	return c.config
}

var _ Chunker = (*OverlappingChunker)(nil)
