package mvc

import (
	"context"
	"fmt"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/view"
)

// Monitor receives dispatch failures for out-of-band reporting.
type Monitor interface {
	Report(ctx context.Context, kind ErrorKind, handler string, cause error)
}

// DispatchListener resolves the handler named by the route match, invokes
// it and turns every failure into a dispatch.error trigger. It never
// returns an error to the event manager.
type DispatchListener struct {
	registry HandlerRegistry
	monitor  Monitor
	handles  []*events.Handle
}

// NewDispatchListener creates a DispatchListener over registry.
func NewDispatchListener(registry HandlerRegistry) *DispatchListener {
	return &DispatchListener{registry: registry}
}

// WithMonitor sets the failure reporter.
func (d *DispatchListener) WithMonitor(m Monitor) *DispatchListener {
	d.monitor = m
	return d
}

// Attach implements Aggregate.
func (d *DispatchListener) Attach(bus *Manager) {
	d.handles = append(d.handles, bus.Attach(EventDispatch, d.OnDispatch, constants.PriorityDispatch))
	if d.monitor != nil {
		d.handles = append(d.handles, bus.Attach(EventDispatchError, d.ReportMonitorEvent, constants.PriorityMonitor))
	}
}

// Detach removes the listeners added by Attach.
func (d *DispatchListener) Detach(bus *Manager) {
	for _, h := range d.handles {
		bus.Detach(h)
	}
	d.handles = nil
}

// OnDispatch is the dispatch listener.
func (d *DispatchListener) OnDispatch(ctx context.Context, e *Event) (any, error) {
	if events.Produced(e.Result()) {
		return nil, nil
	}

	name := constants.DefaultNotFoundHandler
	if m := e.RouteMatch(); m != nil {
		name = m.Param(constants.DefaultHandlerParamName,
			m.Param(constants.FallbackHandlerParamName, constants.DefaultNotFoundHandler))
	}
	ctx = logging.WithHandler(ctx, name)
	log := logging.FromContext(ctx)

	if !d.registry.Has(name) {
		log.Debug().Msg("Handler not registered")
		return d.complete(e, d.notFound(ctx, e, ErrorHandlerNotFound, name, nil)), nil
	}

	h, err := d.resolve(ctx, name)
	if err != nil {
		if errors.IsInvalidService(err) {
			log.Warn().Err(err).Msg("Handler is not dispatchable")
			return d.complete(e, d.notFound(ctx, e, ErrorHandlerInvalid, name, err)), nil
		}
		log.Error().Err(err).Msg("Handler could not be created")
		return d.complete(e, d.badHandler(ctx, e, name, err)), nil
	}

	if aware, ok := h.(EventAware); ok {
		aware.SetEvent(e)
	}

	result, err := d.invoke(ctx, name, h, e)
	if err != nil {
		log.Error().Err(err).Msg("Handler failed")
		result = d.triggerError(ctx, e, ErrorException, name, fmt.Sprintf("%T", h), err)
	}
	return d.complete(e, result), nil
}

// ReportMonitorEvent forwards the failure on a dispatch.error event.
func (d *DispatchListener) ReportMonitorEvent(ctx context.Context, e *Event) (any, error) {
	if d.monitor != nil && e.Cause() != nil {
		d.monitor.Report(ctx, e.Error(), e.Handler(), e.Cause())
	}
	return nil, nil
}

// resolve asks the registry for name. A factory or initializer that panics
// is reported as an error so it takes the bad-handler path.
func (d *DispatchListener) resolve(ctx context.Context, name string) (h Handler, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, errors.NewPanicError(name, r)
		}
	}()
	return d.registry.Get(ctx, name)
}

func (d *DispatchListener) invoke(ctx context.Context, name string, h Handler, e *Event) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewPanicError(name, r)
		}
	}()
	result, err = h.Dispatch(ctx, e.Request(), e.Response())
	if err != nil {
		return nil, errors.NewHandlerError(name, err)
	}
	return result, nil
}

func (d *DispatchListener) notFound(ctx context.Context, e *Event, kind ErrorKind, name string, cause error) any {
	return d.triggerError(ctx, e, kind, name, "invalid handler class or alias: "+name, cause)
}

func (d *DispatchListener) badHandler(ctx context.Context, e *Event, name string, cause error) any {
	return d.triggerError(ctx, e, ErrorException, name, "", cause)
}

// triggerError re-enters the pipeline under dispatch.error and returns the
// last value a listener produced, falling back to the event result.
func (d *DispatchListener) triggerError(ctx context.Context, e *Event, kind ErrorKind, name, class string, cause error) any {
	log := logging.FromContext(ctx)

	if err := e.Enter(EventDispatchError); err != nil {
		log.Warn().Err(err).Str("error_kind", string(kind)).Msg("Already handling a dispatch error")
		return e.Result()
	}
	e.SetError(kind)
	e.SetHandler(name)
	if class != "" {
		e.SetHandlerClass(class)
	}
	if cause != nil {
		e.SetCause(cause)
	}

	results, err := e.Trigger(logging.WithPhase(ctx, EventDispatchError))
	if err != nil {
		log.Error().Err(err).Msg("Dispatch error listener failed")
		return e.Result()
	}
	if last := results.Last(); events.Produced(last) {
		return last
	}
	return e.Result()
}

// complete normalizes string-keyed maps into view variables and stores the
// value as the event result.
func (d *DispatchListener) complete(e *Event, result any) any {
	switch r := result.(type) {
	case map[string]any:
		if len(r) > 0 {
			result = view.NewVariables(r)
		}
	case map[string]string:
		if len(r) == 0 {
			break
		}
		vars := view.NewVariables(nil)
		for k, v := range r {
			vars.Set(k, v)
		}
		result = vars
	}
	e.SetResult(result)
	return result
}
