package contract

import "context"

// Completer is the narrow text-in/text-out completion capability used
// for SQL generation. Implementations wrap a hosted chat model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TraceSink receives one span per tool invocation. A nil sink disables
// tracing; implementations must never fail the traced call.
type TraceSink interface {
	Observe(ctx context.Context, span Span)
}
