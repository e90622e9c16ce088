package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/lector/pkg/rag"
	"github.com/kadirpekel/lector/pkg/vector"
)

type letterEmbedder struct{}

func (letterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	vec[0]++
	return vec, nil
}

func (e letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (letterEmbedder) Dimension() int { return 26 }
func (letterEmbedder) Model() string  { return "letters" }
func (letterEmbedder) Close() error   { return nil }

func newSearchToolFixture(t *testing.T) *SearchTool {
	t.Helper()
	provider, err := vector.NewChromemProvider(vector.ChromemConfig{})
	require.NoError(t, err)

	engine, err := rag.NewSearchEngine(provider, letterEmbedder{}, rag.SearchEngineConfig{Collection: "kb"})
	require.NoError(t, err)

	_, err = engine.IngestDocument(context.Background(), rag.Document{
		ID:      "handbook",
		Name:    "handbook.txt",
		Content: "employees accrue vacation days monthly",
	})
	require.NoError(t, err)
	return NewSearchTool(engine, "search_documents", "Search the knowledge base")
}

func TestSearchTool_Execute(t *testing.T) {
	tool := newSearchToolFixture(t)

	result, err := tool.Execute(context.Background(), map[string]any{"query": "vacation days"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, result.Content, "vacation")
	assert.Contains(t, result.Content, "handbook.txt", "results must cite the document name")
}

func TestSearchTool_MissingQuery(t *testing.T) {
	tool := newSearchToolFixture(t)

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestSearchTool_EngineErrorPropagatesUnchanged(t *testing.T) {
	tool := newSearchToolFixture(t)

	// Single-character query violates the engine's minimum length.
	_, err := tool.Execute(context.Background(), map[string]any{"query": "x"})
	var searchErr *rag.SearchError
	require.ErrorAs(t, err, &searchErr)
}

func TestSearchTool_Info(t *testing.T) {
	tool := NewSearchTool(nil, "search_uploads", "Search uploaded files")

	info := tool.GetInfo()
	assert.Equal(t, "search_uploads", info.Name)
	require.Len(t, info.Parameters, 1)
	assert.Equal(t, "query", info.Parameters[0].Name)
	assert.True(t, info.Parameters[0].Required)
}
