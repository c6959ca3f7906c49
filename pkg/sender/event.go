// Package sender transmits finished responses. Transmitters are listeners
// on a dedicated event manager; each one handles exactly one response type,
// sends headers and body at most once per response instance and then stops
// propagation so later transmitters do not run.
package sender

import (
	"net/http"

	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/message"
)

// EventSendResponse is the name of the send event.
const EventSendResponse = "sendResponse"

// SendEvent carries the response to transmit and, for HTTP, its destination.
type SendEvent struct {
	events.Base
	response message.Response
	writer   http.ResponseWriter
}

// NewSendEvent creates a send event.
func NewSendEvent(resp message.Response, w http.ResponseWriter) *SendEvent {
	e := &SendEvent{Base: events.NewBase(EventSendResponse, nil), writer: w}
	e.SetResponse(resp)
	return e
}

// Response returns the response being sent.
func (e *SendEvent) Response() message.Response { return e.response }

// SetResponse replaces the response. Send flags follow the response
// instance, so switching responses switches flags.
func (e *SendEvent) SetResponse(resp message.Response) {
	e.response = resp
	e.SetParam("response", resp)
}

// Writer returns the HTTP destination, or nil.
func (e *SendEvent) Writer() http.ResponseWriter { return e.writer }

// HeadersSent reports whether the current response's headers were sent.
func (e *SendEvent) HeadersSent() bool {
	return e.response != nil && e.response.SendState().HeadersSent()
}

// SetHeadersSent records that the current response's headers were sent.
func (e *SendEvent) SetHeadersSent() {
	if e.response != nil {
		e.response.SendState().MarkHeadersSent()
	}
}

// ContentSent reports whether the current response's body was sent.
func (e *SendEvent) ContentSent() bool {
	return e.response != nil && e.response.SendState().ContentSent()
}

// SetContentSent records that the current response's body was sent.
func (e *SendEvent) SetContentSent() {
	if e.response != nil {
		e.response.SendState().MarkContentSent()
	}
}
