package waypoint

import (
	"context"
	"net/http"

	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/view"
)

// Run routes and dispatches the request, then renders and sends the
// result. A route or dispatch listener returning a response skips
// rendering; the response is sent as is.
func (a *application) Run(ctx context.Context, req message.Request, resp message.Response, w http.ResponseWriter) (message.Response, error) {
	if err := a.Bootstrap(); err != nil {
		return nil, err
	}

	e := mvc.NewEvent(a.bus, req, resp)
	e.SetTarget(a)
	e.SetResponseWriter(w)

	root := view.NewModel(nil)
	root.SetTemplate(a.rendering.LayoutTemplate())
	e.SetViewModel(root)

	ctx = logging.WithField(ctx, "path", req.Path())
	log := logging.FromContext(ctx)

	shortCircuit := func(r any) bool {
		if _, ok := r.(message.Response); ok {
			return true
		}
		return e.IsError()
	}

	// route
	if err := e.Enter(mvc.EventRoute); err != nil {
		return nil, err
	}
	results, err := a.bus.TriggerUntil(logging.WithPhase(ctx, mvc.EventRoute), e, shortCircuit)
	if err != nil {
		return nil, err
	}
	if results.Stopped() {
		if r, ok := results.Last().(message.Response); ok {
			log.Debug().Msg("Route phase returned a response")
			return a.finish(ctx, e, r)
		}
	}
	if e.IsError() {
		return a.complete(ctx, e)
	}

	if m := e.RouteMatch(); m != nil {
		ctx = logging.WithRoute(ctx, m.MatchedRouteName())
	}

	// dispatch
	if err := e.Enter(mvc.EventDispatch); err != nil {
		return nil, err
	}
	results, err = a.bus.TriggerUntil(logging.WithPhase(ctx, mvc.EventDispatch), e, shortCircuit)
	if err != nil {
		return nil, err
	}
	if r, ok := results.Last().(message.Response); ok {
		return a.finish(ctx, e, r)
	}
	return a.complete(ctx, e)
}

// complete renders the view model and sends the event's response.
func (a *application) complete(ctx context.Context, e *mvc.Event) (message.Response, error) {
	if err := e.Enter(mvc.EventRender); err != nil {
		return nil, err
	}
	if _, err := e.Trigger(logging.WithPhase(ctx, mvc.EventRender)); err != nil {
		return e.Response(), err
	}
	return a.finish(ctx, e, e.Response())
}

// finish sends resp and marks the request done.
func (a *application) finish(ctx context.Context, e *mvc.Event, resp message.Response) (message.Response, error) {
	e.SetResponse(resp)
	if err := e.Enter(mvc.EventFinish); err != nil {
		return resp, err
	}
	if _, err := e.Trigger(logging.WithPhase(ctx, mvc.EventFinish)); err != nil {
		return resp, err
	}
	if err := e.Done(); err != nil {
		return resp, err
	}

	logging.FromContext(ctx).Debug().
		Int("status", resp.StatusCode()).
		Str("error_kind", string(e.Error())).
		Msg("Request finished")
	return resp, nil
}
