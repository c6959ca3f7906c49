package monitor

import (
	"context"

	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/mvc"
)

// Reporter turns pipeline callbacks into broker events. It satisfies
// mvc.Monitor for dispatch failures; RenderFailed and Finished match the
// application hook signatures.
type Reporter struct {
	broker *Broker
}

var _ mvc.Monitor = (*Reporter)(nil)

// NewReporter creates a Reporter publishing to b.
func NewReporter(b *Broker) *Reporter {
	return &Reporter{broker: b}
}

// Report publishes a DispatchError event.
func (r *Reporter) Report(ctx context.Context, kind mvc.ErrorKind, handler string, cause error) {
	f := Failure{
		Kind:      string(kind),
		Handler:   handler,
		RequestID: logging.RequestID(ctx),
	}
	if cause != nil {
		f.Error = cause.Error()
	}
	r.broker.Publish(DispatchError, f)
}

// RenderFailed publishes a RenderError event.
func (r *Reporter) RenderFailed(ctx context.Context, e *mvc.Event) {
	f := Failure{
		Kind:      string(e.Error()),
		Handler:   e.Handler(),
		RequestID: logging.RequestID(ctx),
	}
	if m := e.RouteMatch(); m != nil {
		f.Route = m.MatchedRouteName()
	}
	if req := e.Request(); req != nil {
		f.Path = req.Path()
	}
	if err := e.Cause(); err != nil {
		f.Error = err.Error()
	}
	r.broker.Publish(RenderError, f)
}

// Finished publishes a RequestFinished event.
func (r *Reporter) Finished(ctx context.Context, e *mvc.Event) {
	summary := Request{
		Handler:   e.Handler(),
		RequestID: logging.RequestID(ctx),
	}
	if req := e.Request(); req != nil {
		summary.Method = req.Method()
		summary.Path = req.Path()
	}
	if resp := e.Response(); resp != nil {
		summary.Status = resp.StatusCode()
	}
	if m := e.RouteMatch(); m != nil {
		summary.Route = m.MatchedRouteName()
	}
	r.broker.Publish(RequestFinished, summary)
}
