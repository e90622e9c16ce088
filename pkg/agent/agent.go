package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/tools"
)

// DefaultMaxIterations bounds the model/tool loop of a single run.
const DefaultMaxIterations = 8

// Config configures an Orchestrator.
type Config struct {
	// MaxIterations bounds the number of model calls per run (default: 8).
	MaxIterations int

	// UploadedTool names the registry entry backed by the user's uploaded
	// files, if any. It is surfaced in the system prompt.
	UploadedTool string

	Logger *slog.Logger
}

func (c *Config) SetDefaults() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Orchestrator drives the model/tool loop for one conversation turn:
// stream the model, execute any requested tools, feed the results back,
// repeat until the model produces a final answer or the iteration bound
// is hit.
type Orchestrator struct {
	llm    llms.LLM
	config Config
	logger *slog.Logger
}

// New creates an orchestrator over the given model.
func New(llm llms.LLM, cfg Config) *Orchestrator {
	cfg.SetDefaults()
	return &Orchestrator{
		llm:    llm,
		config: cfg,
		logger: cfg.Logger,
	}
}

// Run executes one turn. Events are delivered on the returned channel,
// which is closed when the run ends. Every run terminates with exactly
// one finished or error event.
func (o *Orchestrator) Run(ctx context.Context, input string, history []llms.Message, registry *tools.ToolRegistry) <-chan Event {
	events := make(chan Event, 100)

	go func() {
		defer close(events)
		o.run(ctx, input, history, registry, events)
	}()

	return events
}

func (o *Orchestrator) run(ctx context.Context, input string, history []llms.Message, registry *tools.ToolRegistry, events chan<- Event) {
	events <- Event{Kind: KindActionStarted}

	messages := make([]llms.Message, 0, len(history)+2)
	messages = append(messages, llms.Message{
		Role:    llms.RoleSystem,
		Content: BuildSystemPrompt(registry, o.config.UploadedTool),
	})
	messages = append(messages, history...)
	messages = append(messages, llms.Message{Role: llms.RoleUser, Content: input})

	definitions := registry.Definitions()

	for iteration := 0; iteration < o.config.MaxIterations; iteration++ {
		stream, err := o.llm.GenerateStreaming(ctx, messages, definitions)
		if err != nil {
			events <- Event{Kind: KindError, Err: NewOrchestrationError("model", "failed to start model stream", err)}
			return
		}

		var text strings.Builder
		var toolCalls []llms.ToolCall

		for chunk := range stream {
			switch chunk.Type {
			case llms.ChunkTypeText:
				text.WriteString(chunk.Text)
				events <- Event{Kind: KindModelToken, Token: chunk.Text}

			case llms.ChunkTypeToolCall:
				if chunk.ToolCall != nil {
					toolCalls = append(toolCalls, *chunk.ToolCall)
				}

			case llms.ChunkTypeError:
				events <- Event{Kind: KindError, Err: NewOrchestrationError("model", "model stream failed", chunk.Error)}
				return

			case llms.ChunkTypeDone:
				// finish_reason is implied by the collected tool calls.
			}
		}

		if len(toolCalls) == 0 {
			events <- Event{Kind: KindFinished, Answer: text.String()}
			return
		}

		messages = append(messages, llms.Message{
			Role:      llms.RoleAssistant,
			Content:   text.String(),
			ToolCalls: toolCalls,
		})

		for _, call := range toolCalls {
			if _, err := registry.GetTool(call.Name); err != nil {
				events <- Event{Kind: KindError, Err: NewOrchestrationError("tool",
					fmt.Sprintf("model requested unknown tool %q", call.Name), err)}
				return
			}

			input := summarizeArgs(call.Args)
			o.logger.Info("tool selected", "tool", call.Name, "input", input)
			events <- Event{Kind: KindToolStarted, Tool: call.Name, Input: input}

			result, execErr := registry.ExecuteTool(ctx, call.Name, call.Args)

			content := result.Content
			if execErr != nil {
				content = fmt.Sprintf("tool error: %v", execErr)
				o.logger.Warn("tool execution failed", "tool", call.Name, "error", execErr)
			}

			events <- Event{Kind: KindToolEnded, Tool: call.Name}

			messages = append(messages, llms.Message{
				Role:       llms.RoleTool,
				Content:    content,
				ToolCallID: call.ID,
			})
		}
	}

	events <- Event{Kind: KindError, Err: NewOrchestrationError("loop",
		fmt.Sprintf("no final answer after %d iterations", o.config.MaxIterations), nil)}
}

// summarizeArgs renders tool args for status display, favoring the
// common query argument.
func summarizeArgs(args map[string]any) string {
	if q, ok := args["query"].(string); ok {
		return q
	}
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprintf("%v", args)
}
