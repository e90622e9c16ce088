package agent

import "fmt"

// OrchestrationError reports a failure inside an agent run: a model
// call that errored, a tool call naming an unregistered tool, or a run
// that exhausted its iteration bound.
type OrchestrationError struct {
	Phase   string
	Message string
	Err     error
}

func (e *OrchestrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("orchestration failed during %s: %s: %v", e.Phase, e.Message, e.Err)
	}
	return fmt.Sprintf("orchestration failed during %s: %s", e.Phase, e.Message)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

func NewOrchestrationError(phase, message string, err error) *OrchestrationError {
	return &OrchestrationError{
		Phase:   phase,
		Message: message,
		Err:     err,
	}
}
