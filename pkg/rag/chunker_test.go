package rag

import (
	"strings"
	"testing"
)

func TestChunkerConfig_SetDefaults(t *testing.T) {
	cfg := ChunkerConfig{}
	cfg.SetDefaults()

	if cfg.Strategy != ChunkerOverlapping {
		t.Errorf("Strategy = %s, want %s", cfg.Strategy, ChunkerOverlapping)
	}
	if cfg.Size != 1000 {
		t.Errorf("Size = %d, want 1000", cfg.Size)
	}
}

func TestChunkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkerConfig
		wantErr bool
	}{
		{"valid", ChunkerConfig{Strategy: ChunkerSimple, Size: 100, Overlap: 10}, false},
		{"bad strategy", ChunkerConfig{Strategy: "semantic", Size: 100}, true},
		{"zero size", ChunkerConfig{Strategy: ChunkerSimple}, true},
		{"overlap >= size", ChunkerConfig{Strategy: ChunkerOverlapping, Size: 100, Overlap: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimpleChunker_SingleChunk(t *testing.T) {
	chunker := NewSimpleChunker(ChunkerConfig{Strategy: ChunkerSimple, Size: 1000})

	chunks, err := chunker.Chunk("short content\nsecond line")
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Chunk() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].Total != 1 || chunks[0].Index != 0 {
		t.Errorf("chunk index/total = %d/%d, want 0/1", chunks[0].Index, chunks[0].Total)
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 2 {
		t.Errorf("chunk lines = %d-%d, want 1-2", chunks[0].StartLine, chunks[0].EndLine)
	}
}

func TestSimpleChunker_MultipleChunks(t *testing.T) {
	chunker := NewSimpleChunker(ChunkerConfig{Strategy: ChunkerSimple, Size: 50})

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("line of test content here\n")
	}
	content := sb.String()

	chunks, err := chunker.Chunk(content)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Chunk() returned %d chunks, want multiple", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has Index %d", i, chunk.Index)
		}
		if chunk.Total != len(chunks) {
			t.Errorf("chunk %d has Total %d, want %d", i, chunk.Total, len(chunks))
		}
		// Lines are never split mid-line.
		if !strings.HasSuffix(chunk.Content, "\n") {
			t.Errorf("chunk %d does not end at a line boundary", i)
		}
	}
}

func TestOverlappingChunker_Overlap(t *testing.T) {
	chunker := NewOverlappingChunker(ChunkerConfig{Strategy: ChunkerOverlapping, Size: 60, Overlap: 30})

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString("abcdefghijklmnopqrstuvwxyz\n")
	}

	chunks, err := chunker.Chunk(sb.String())
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Chunk() returned %d chunks, want multiple", len(chunks))
	}

	// Consecutive chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		curr := chunks[i]
		if curr.StartLine > prev.EndLine {
			t.Errorf("chunks %d and %d do not overlap: prev ends %d, next starts %d",
				i-1, i, prev.EndLine, curr.StartLine)
		}
	}
}

func TestNewChunker_StrategySelection(t *testing.T) {
	simple, err := NewChunker(ChunkerConfig{Strategy: ChunkerSimple, Size: 100})
	if err != nil {
		t.Fatalf("NewChunker(simple) error = %v", err)
	}
	if simple.Strategy() != ChunkerSimple {
		t.Errorf("Strategy() = %s, want simple", simple.Strategy())
	}

	overlapping, err := NewChunker(ChunkerConfig{})
	if err != nil {
		t.Fatalf("NewChunker(default) error = %v", err)
	}
	if overlapping.Strategy() != ChunkerOverlapping {
		t.Errorf("Strategy() = %s, want overlapping", overlapping.Strategy())
	}

	if _, err := NewChunker(ChunkerConfig{Strategy: "unknown"}); err == nil {
		t.Error("NewChunker() expected error for unknown strategy")
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one line", 1},
		{"two\nlines", 2},
		{"trailing\nnewline\n", 3},
	}

	for _, tt := range tests {
		if got := countLines(tt.content); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}
