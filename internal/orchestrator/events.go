package orchestrator

import "encoding/json"

// Event types published on the bus for one job.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is the bus payload for generation lifecycle events. Observers of a
// scope's subject see zero or more progress events followed by exactly one
// complete or error event per accepted start.
type Event struct {
	Type string `json:"type"`

	// Content is the text delta of a progress event.
	Content string `json:"content,omitempty"`

	// Result is the parsed artifact of a complete event.
	Result json.RawMessage `json:"result,omitempty"`

	// Error and Kind describe an error event. Kind carries the failure
	// classification so observers can distinguish a cancelled job from a
	// failed one.
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// EventSubject returns the bus subject carrying a scope's events.
func EventSubject(scope string) string {
	return scope + ":event"
}
