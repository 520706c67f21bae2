package contract

import "time"

// Span describes one observed unit of work: the tool call as a whole
// or one of its phases (translation, execution).
type Span struct {
	Name      string         `json:"name"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
