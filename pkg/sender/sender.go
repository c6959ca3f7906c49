package sender

import (
	"context"
	"io"
	"maps"
	"net/http"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
)

// Chain is the event manager transmitters attach to.
type Chain = events.Manager[*SendEvent]

// NewChain creates a chain with the stream, HTTP and console transmitters.
// Console output goes to console.
func NewChain(console io.Writer) *Chain {
	c := events.NewManager[*SendEvent]()
	c.Attach(EventSendResponse, StreamSender{}.Send, constants.PriorityStreamSender)
	c.Attach(EventSendResponse, HTTPSender{}.Send, constants.PriorityHTTPSender)
	c.Attach(EventSendResponse, ConsoleSender{Out: console}.Send, constants.PriorityConsoleSender)
	return c
}

func writeHeaders(e *SendEvent, resp message.Response) {
	if e.HeadersSent() {
		return
	}
	w := e.Writer()
	maps.Copy(w.Header(), resp.Header())
	status := resp.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	e.SetHeadersSent()
}

// HTTPSender transmits *message.HTTPResponse values.
type HTTPSender struct{}

// Send is the send listener.
func (HTTPSender) Send(ctx context.Context, e *SendEvent) (any, error) {
	resp, ok := e.Response().(*message.HTTPResponse)
	if !ok || e.Writer() == nil {
		return nil, nil
	}

	writeHeaders(e, resp)
	if !e.ContentSent() {
		n, err := io.WriteString(e.Writer(), resp.Content())
		if err != nil {
			return nil, errors.WrapIO("send", "body", err)
		}
		e.SetContentSent()
		logging.FromContext(ctx).Debug().Int("status", resp.StatusCode()).Int("bytes", n).Msg("Response sent")
	}
	e.StopPropagation(true)
	return nil, nil
}

// StreamSender transmits *message.StreamResponse values, closing the
// stream when it is an io.Closer.
type StreamSender struct{}

// Send is the send listener.
func (StreamSender) Send(ctx context.Context, e *SendEvent) (any, error) {
	resp, ok := e.Response().(*message.StreamResponse)
	if !ok || e.Writer() == nil {
		return nil, nil
	}

	writeHeaders(e, resp)
	if !e.ContentSent() {
		stream := resp.Stream()
		if stream != nil {
			if c, ok := stream.(io.Closer); ok {
				defer c.Close()
			}
			n, err := io.Copy(e.Writer(), stream)
			if err != nil {
				return nil, errors.WrapIO("send", "stream", err)
			}
			logging.FromContext(ctx).Debug().Int64("bytes", n).Msg("Stream sent")
		}
		e.SetContentSent()
	}
	e.StopPropagation(true)
	return nil, nil
}

// ConsoleSender writes *message.ConsoleResponse bodies to Out. Console
// responses have no headers; the flag is still recorded.
type ConsoleSender struct {
	Out io.Writer
}

// Send is the send listener.
func (s ConsoleSender) Send(_ context.Context, e *SendEvent) (any, error) {
	resp, ok := e.Response().(*message.ConsoleResponse)
	if !ok {
		return nil, nil
	}

	if !e.HeadersSent() {
		e.SetHeadersSent()
	}
	if !e.ContentSent() {
		if s.Out != nil {
			if _, err := io.WriteString(s.Out, resp.Content()); err != nil {
				return nil, errors.WrapIO("send", "console", err)
			}
		}
		e.SetContentSent()
	}
	e.StopPropagation(true)
	return nil, nil
}
