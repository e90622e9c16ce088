package llms

import "context"

// LLM is a streaming chat model. Implementations send text, tool-call,
// and done chunks on the returned channel and close it when the response
// ends. A transport or API failure arrives as a single error chunk.
type LLM interface {
	// GenerateStreaming starts a chat completion over the given messages
	// and tool definitions.
	GenerateStreaming(ctx context.Context, messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error)

	// ModelName returns the configured model identifier.
	ModelName() string

	Close() error
}
