package tools

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/lector/pkg/llms"
	"github.com/kadirpekel/lector/pkg/observability"
	"github.com/kadirpekel/lector/pkg/registry"
)

type ToolRegistryError struct {
	Component string
	Action    string
	Message   string
	Err       error
}

func (e *ToolRegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Action, e.Message)
}

func (e *ToolRegistryError) Unwrap() error {
	return e.Err
}

func NewToolRegistryError(component, action, message string, err error) *ToolRegistryError {
	return &ToolRegistryError{
		Component: component,
		Action:    action,
		Message:   message,
		Err:       err,
	}
}

// ToolRegistry holds the tools available to an agent for one turn.
type ToolRegistry struct {
	*registry.BaseRegistry[Tool]
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		BaseRegistry: registry.NewBaseRegistry[Tool](),
	}
}

// RegisterTool adds a tool under its own name.
func (r *ToolRegistry) RegisterTool(tool Tool) error {
	name := tool.GetName()
	if name == "" {
		return NewToolRegistryError("ToolRegistry", "RegisterTool", "tool name cannot be empty", nil)
	}
	if err := r.Register(name, tool); err != nil {
		return NewToolRegistryError("ToolRegistry", "RegisterTool",
			fmt.Sprintf("failed to register tool %s", name), err)
	}
	return nil
}

// GetTool looks up a registered tool by name.
func (r *ToolRegistry) GetTool(name string) (Tool, error) {
	tool, exists := r.Get(name)
	if !exists {
		return nil, NewToolRegistryError("ToolRegistry", "GetTool",
			fmt.Sprintf("tool %s not found", name), nil)
	}
	return tool, nil
}

// Definitions returns model-facing definitions for every registered tool,
// in name order.
func (r *ToolRegistry) Definitions() []llms.ToolDefinition {
	names := r.Names()
	defs := make([]llms.ToolDefinition, 0, len(names))
	for _, name := range names {
		if tool, exists := r.Get(name); exists {
			defs = append(defs, tool.GetInfo().Definition())
		}
	}
	return defs
}

// ExecuteTool runs a registered tool with tracing and metrics.
func (r *ToolRegistry) ExecuteTool(ctx context.Context, toolName string, args map[string]any) (ToolResult, error) {
	startTime := time.Now()

	tracer := observability.GetTracer("lector.tools")
	ctx, span := tracer.Start(ctx, observability.SpanToolExecution,
		trace.WithAttributes(
			attribute.String(observability.AttrToolName, toolName),
		),
	)
	defer span.End()

	tool, err := r.GetTool(toolName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tool not found")

		if m := observability.GetGlobalMetrics(); m != nil {
			m.RecordToolExecution(ctx, toolName, time.Since(startTime), err)
		}

		return ToolResult{
			Success:  false,
			Error:    err.Error(),
			ToolName: toolName,
		}, err
	}

	result, execErr := tool.Execute(ctx, args)
	duration := time.Since(startTime)
	result.ExecutionTime = duration

	if m := observability.GetGlobalMetrics(); m != nil {
		var recordErr error
		if execErr != nil {
			recordErr = execErr
		} else if !result.Success {
			recordErr = fmt.Errorf("%s", result.Error)
		}
		m.RecordToolExecution(ctx, toolName, duration, recordErr)
	}

	if execErr != nil {
		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Error())
	} else if !result.Success {
		span.SetStatus(codes.Error, result.Error)
	} else {
		span.SetStatus(codes.Ok, "success")
	}

	span.SetAttributes(
		attribute.Bool("tool.success", result.Success),
		attribute.Int64("tool.duration_ms", duration.Milliseconds()),
	)

	return result, execErr
}
