package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/lector/pkg/rag"
)

// SearchTool exposes a rag.SearchEngine to the model as a callable tool.
// The name and description are caller-chosen so the same adapter serves
// both the preloaded knowledge base and ad-hoc upload indexes.
type SearchTool struct {
	engine      *rag.SearchEngine
	name        string
	description string
}

// NewSearchTool wraps a search engine as a tool.
func NewSearchTool(engine *rag.SearchEngine, name, description string) *SearchTool {
	return &SearchTool{
		engine:      engine,
		name:        name,
		description: description,
	}
}

func (t *SearchTool) GetName() string {
	return t.name
}

func (t *SearchTool) GetDescription() string {
	return t.description
}

func (t *SearchTool) GetInfo() ToolInfo {
	return ToolInfo{
		Name:        t.name,
		Description: t.description,
		Parameters: []ToolParameter{
			{
				Name:        "query",
				Type:        "string",
				Description: "The search query",
				Required:    true,
			},
		},
	}
}

// Execute runs a similarity search and renders the hits as numbered
// snippets. Engine errors propagate unchanged so callers can match on
// the rag error types.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	startTime := time.Now()

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return ToolResult{
			Success:  false,
			Error:    "query parameter is required",
			ToolName: t.name,
		}, fmt.Errorf("query parameter is required")
	}

	results, err := t.engine.Search(ctx, query)
	if err != nil {
		return ToolResult{
			Success:  false,
			Error:    err.Error(),
			ToolName: t.name,
		}, err
	}

	return ToolResult{
		Success:       true,
		Content:       formatResults(results),
		ToolName:      t.name,
		ExecutionTime: time.Since(startTime),
	}, nil
}

func formatResults(results []rag.SearchResult) string {
	if len(results) == 0 {
		return "No matching documents found."
	}

	var sb strings.Builder
	for i, r := range results {
		name := r.DocumentID
		if n, ok := r.Metadata["document_name"].(string); ok && n != "" {
			name = n
		}
		fmt.Fprintf(&sb, "[%d] %s (score: %.2f)\n%s\n\n", i+1, name, r.Score, r.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

var _ Tool = (*SearchTool)(nil)
