package dialog

// Stream event types surfaced to the client while a turn is processed.
const (
	EventLog    = "log"
	EventAnswer = "answer"
	EventError  = "error"
)

// EventSink receives progress events emitted by pipeline stages. Sinks must
// be safe for sequential calls only; a turn never emits concurrently.
type EventSink func(event string, content string)

// NopSink discards events. Useful for tests and batch callers.
func NopSink(event string, content string) {}
