// Package channel provides the bidirectional event channel the chat
// engine is driven by. The engine only sees the Channel interface, so
// tests substitute an in-memory double and multiple independent
// sessions can share or own a connection as they see fit.
package channel

import "encoding/json"

// Handler consumes the raw payload of one named event. Handlers for a
// connection are invoked sequentially from a single goroutine; state
// they touch needs no locking against other handlers.
type Handler func(data json.RawMessage)

type Channel interface {
	// Emit sends a named event with the given payload. The payload is
	// marshalled to JSON; a nil payload sends the bare event.
	Emit(name string, data any) error

	// On registers the handler for a named event, replacing any
	// previous handler for that name.
	On(name string, h Handler)

	// Off removes the handler for a named event.
	Off(name string)

	Close() error
}
