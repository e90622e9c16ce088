package llms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/lector/pkg/config"
)

func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func newTestProvider(t *testing.T, server *httptest.Server) *OpenAIProvider {
	t.Helper()
	provider, err := NewOpenAIProvider(config.LLMConfig{
		Model:   "gpt-4o-mini",
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return provider
}

func collect(t *testing.T, ch <-chan StreamChunk) []StreamChunk {
	t.Helper()
	var chunks []StreamChunk
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestNewOpenAIProvider_RequiresModel(t *testing.T) {
	_, err := NewOpenAIProvider(config.LLMConfig{})
	assert.Error(t, err)
}

func TestGenerateStreaming_Text(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"choices":[{"delta":{"content":"Hello"}}]}`,
		`{"choices":[{"delta":{"content":" world"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":2,"total_tokens":12}}`,
	}))
	defer server.Close()

	provider := newTestProvider(t, server)
	ch, err := provider.GenerateStreaming(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	}, nil)
	require.NoError(t, err)

	chunks := collect(t, ch)

	var text strings.Builder
	for _, chunk := range chunks {
		require.NotEqual(t, ChunkTypeError, chunk.Type, "unexpected error chunk: %v", chunk.Error)
		if chunk.Type == ChunkTypeText {
			text.WriteString(chunk.Text)
		}
	}
	assert.Equal(t, "Hello world", text.String())

	last := chunks[len(chunks)-1]
	require.Equal(t, ChunkTypeDone, last.Type)
	assert.Equal(t, "stop", last.FinishReason)
	assert.Equal(t, 12, last.Tokens)
}

func TestGenerateStreaming_ToolCallAccumulation(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"choices":[{"delta":{"tool_calls":[{"id":"call_1","type":"function","function":{"name":"search_documents","arguments":""}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"function":{"arguments":"{\"que"}}]}}]}`,
		`{"choices":[{"delta":{"tool_calls":[{"function":{"arguments":"ry\":\"gophers\"}"}}]}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
	}))
	defer server.Close()

	provider := newTestProvider(t, server)
	ch, err := provider.GenerateStreaming(context.Background(), []Message{
		{Role: RoleUser, Content: "find gophers"},
	}, []ToolDefinition{{Name: "search_documents", Description: "search", Parameters: map[string]any{"type": "object"}}})
	require.NoError(t, err)

	chunks := collect(t, ch)

	var toolCall *ToolCall
	for _, chunk := range chunks {
		if chunk.Type == ChunkTypeToolCall {
			toolCall = chunk.ToolCall
		}
	}
	require.NotNil(t, toolCall, "no tool_call chunk received")
	assert.Equal(t, "call_1", toolCall.ID)
	assert.Equal(t, "search_documents", toolCall.Name)
	assert.Equal(t, "gophers", toolCall.Args["query"])

	last := chunks[len(chunks)-1]
	require.Equal(t, ChunkTypeDone, last.Type)
	assert.Equal(t, "tool_calls", last.FinishReason)
}

func TestGenerateStreaming_SkipsMalformedFrames(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`not-json`,
		`{"choices":[{"delta":{"content":"ok"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
	}))
	defer server.Close()

	provider := newTestProvider(t, server)
	ch, err := provider.GenerateStreaming(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)

	chunks := collect(t, ch)
	for _, chunk := range chunks {
		require.NotEqual(t, ChunkTypeError, chunk.Type, "malformed frame surfaced as error: %v", chunk.Error)
	}
	require.NotEmpty(t, chunks)
	assert.Equal(t, ChunkTypeText, chunks[0].Type)
	assert.Equal(t, "ok", chunks[0].Text)
}

func TestGenerateStreaming_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer server.Close()

	provider := newTestProvider(t, server)
	ch, err := provider.GenerateStreaming(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 1)
	require.Equal(t, ChunkTypeError, chunks[0].Type)
	assert.Contains(t, chunks[0].Error.Error(), "bad key")
}
