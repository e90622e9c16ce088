package chat

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kadirpekel/lector/pkg/agent"
)

// FallbackMessage is shown when a run produces neither a finished answer
// nor any streamed tokens.
const FallbackMessage = "I'm sorry, I wasn't able to produce an answer. Please try again."

// StatusFunc receives human-readable progress updates during a turn.
type StatusFunc func(status string)

// Outcome is the classified result of one event stream.
type Outcome struct {
	// Answer is the text to show the user.
	Answer string

	// Failed reports that the stream produced no usable answer. The
	// Answer is then the fallback message and must not enter history.
	Failed bool

	// Err carries the stream's error event, if one arrived.
	Err error
}

// Classifier reduces an agent event stream to a single outcome. A
// finished event's answer is authoritative; accumulated model tokens are
// the backup; with neither, the turn fails with a fallback message.
type Classifier struct {
	status StatusFunc
	logger *slog.Logger
}

// NewClassifier creates a classifier. status may be nil.
func NewClassifier(status StatusFunc, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		status: status,
		logger: logger,
	}
}

// legacyKinds maps retired underscore-style event tags onto the current
// ones so older producers keep working.
var legacyKinds = map[string]string{
	"action_started": agent.KindActionStarted,
	"tool_started":   agent.KindToolStarted,
	"tool_ended":     agent.KindToolEnded,
	"model_token":    agent.KindModelToken,
	"turn_finished":  agent.KindFinished,
	"turn_error":     agent.KindError,
}

func (c *Classifier) normalizeKind(kind string) string {
	if mapped, ok := legacyKinds[kind]; ok {
		c.logger.Warn("legacy event kind received", "kind", kind, "normalized", mapped)
		return mapped
	}
	return kind
}

func (c *Classifier) emitStatus(status string) {
	if c.status != nil {
		c.status(status)
	}
}

// Consume drains the event stream and classifies it.
func (c *Classifier) Consume(events <-chan agent.Event) Outcome {
	var tokens strings.Builder
	finished := ""
	sawFinished := false
	var streamErr error

	for ev := range events {
		switch c.normalizeKind(ev.Kind) {
		case agent.KindActionStarted:
			c.emitStatus("Thinking...")

		case agent.KindToolStarted:
			if ev.Input != "" {
				c.emitStatus(fmt.Sprintf("Searching with %s: %s", ev.Tool, ev.Input))
			} else {
				c.emitStatus(fmt.Sprintf("Running %s...", ev.Tool))
			}

		case agent.KindToolEnded:
			c.emitStatus(fmt.Sprintf("Finished %s", ev.Tool))

		case agent.KindModelToken:
			tokens.WriteString(ev.Token)

		case agent.KindFinished:
			finished = ev.Answer
			sawFinished = true

		case agent.KindError:
			streamErr = ev.Err
			c.logger.Warn("agent run reported error", "error", ev.Err)

		default:
			c.logger.Warn("unknown event kind skipped", "kind", ev.Kind)
		}
	}

	if sawFinished && strings.TrimSpace(finished) != "" {
		return Outcome{Answer: finished, Err: streamErr}
	}
	if strings.TrimSpace(tokens.String()) != "" {
		return Outcome{Answer: tokens.String(), Err: streamErr}
	}
	return Outcome{
		Answer: FallbackMessage,
		Failed: true,
		Err:    streamErr,
	}
}
