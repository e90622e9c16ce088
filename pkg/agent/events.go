package agent

// Event kinds emitted by the orchestrator, in the order a consumer can
// expect them: an action-started marker, then interleaved model tokens
// and tool lifecycle events, then exactly one finished or error event.
const (
	KindActionStarted = "action-started"
	KindToolStarted   = "tool-started"
	KindToolEnded     = "tool-ended"
	KindModelToken    = "model-token"
	KindFinished      = "finished"
	KindError         = "error"
)

// Event is one step of an agent run.
type Event struct {
	// Kind is one of the Kind* constants.
	Kind string

	// Tool names the tool for tool-started and tool-ended events.
	Tool string

	// Input is the tool input summary for tool-started events.
	Input string

	// Token is an incremental piece of model output.
	Token string

	// Answer is the complete final text, set on finished events.
	Answer string

	// Err is set on error events.
	Err error
}
