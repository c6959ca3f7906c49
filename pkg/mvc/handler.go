package mvc

import (
	"context"

	"github.com/agentstation/waypoint/pkg/message"
)

// Handler processes a dispatched request. The returned value becomes the
// event result; returning an error enters the dispatch.error phase.
type Handler interface {
	Dispatch(ctx context.Context, req message.Request, resp message.Response) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req message.Request, resp message.Response) (any, error)

// Dispatch calls f.
func (f HandlerFunc) Dispatch(ctx context.Context, req message.Request, resp message.Response) (any, error) {
	return f(ctx, req, resp)
}

// EventAware handlers receive the request's event before Dispatch.
type EventAware interface {
	SetEvent(e *Event)
}

// HandlerRegistry locates handlers by identifier. Get returns an error
// matching errors.ErrInvalidService when the entry is not a Handler.
type HandlerRegistry interface {
	Has(name string) bool
	Get(ctx context.Context, name string) (Handler, error)
}

// Aggregate is a set of listeners that attach themselves to a manager.
type Aggregate interface {
	Attach(bus *Manager)
}
