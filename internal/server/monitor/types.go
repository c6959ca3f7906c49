// Package monitor fans pipeline failures and finished requests out to
// live subscribers such as the SSE stream and the WebSocket hub.
package monitor

import "time"

// EventType names a monitor event.
type EventType string

// Monitor event types.
const (
	// DispatchError is published for every dispatch.error that carries a cause
	DispatchError EventType = "dispatch.error"

	// RenderError is published before a failed render is retried
	RenderError EventType = "render.error"

	// RequestFinished is published after a response was sent
	RequestFinished EventType = "request.finished"

	// ClientConnected is published by the transports when a client joins
	ClientConnected EventType = "client.connected"
)

// Event is one monitor notification.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Failure describes a request that entered an error phase.
type Failure struct {
	Kind      string `json:"kind"`
	Handler   string `json:"handler,omitempty"`
	Route     string `json:"route,omitempty"`
	Path      string `json:"path,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Request summarizes a finished request.
type Request struct {
	Method    string `json:"method,omitempty"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Route     string `json:"route,omitempty"`
	Handler   string `json:"handler,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Subscriber receives monitor events. Send must not block for long; the
// broker calls it from its own goroutine per event.
type Subscriber interface {
	Send(Event) error
	Close() error
}
