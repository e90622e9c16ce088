package agent

import (
	"fmt"
	"strings"

	"github.com/kadirpekel/lector/pkg/tools"
)

// basePrompt sets the assistant's ground rules: answer from retrieved
// material when tools are available, admit when nothing relevant is found.
const basePrompt = `You are a helpful assistant. When tools are available, use them to look up relevant information before answering. Ground your answers in the retrieved material and say so when nothing relevant was found. Keep answers concise.`

// BuildSystemPrompt renders the system prompt for one turn. Registered
// tools are listed with their descriptions. When uploadedTool names a
// registered tool, the prompt instructs the model to prefer it for any
// question about uploaded or attached files.
func BuildSystemPrompt(registry *tools.ToolRegistry, uploadedTool string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)

	names := registry.Names()
	if len(names) > 0 {
		sb.WriteString("\n\nAvailable tools:\n")
		for _, name := range names {
			tool, exists := registry.Get(name)
			if !exists {
				continue
			}
			fmt.Fprintf(&sb, "- %s: %s\n", name, tool.GetDescription())
		}
	}

	if uploadedTool != "" {
		if _, exists := registry.Get(uploadedTool); exists {
			fmt.Fprintf(&sb,
				"\nThe user has uploaded files for this conversation. Prefer the %s tool whenever the question refers to uploaded or attached material.\n",
				uploadedTool)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
