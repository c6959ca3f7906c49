// Package mvc contains the request pipeline of waypoint: the event that
// travels through the route, dispatch, render and finish phases, and the
// listeners that implement each phase.
package mvc

import (
	"context"
	"net/http"

	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

// Event names.
const (
	EventRoute         = "route"
	EventDispatch      = "dispatch"
	EventDispatchError = "dispatch.error"
	EventRender        = "render"
	EventRenderError   = "render.error"
	EventFinish        = "finish"
)

// ErrorKind classifies why a request entered an error phase.
type ErrorKind string

// Error kinds.
const (
	ErrorNone            ErrorKind = ""
	ErrorHandlerNotFound ErrorKind = "error-handler-not-found"
	ErrorHandlerInvalid  ErrorKind = "error-handler-invalid"
	ErrorException       ErrorKind = "error-exception"
	ErrorRouterNoMatch   ErrorKind = "error-router-no-match"
)

// IsNotFound reports whether the kind should be answered with a 404.
func (k ErrorKind) IsNotFound() bool {
	switch k {
	case ErrorHandlerNotFound, ErrorHandlerInvalid, ErrorRouterNoMatch:
		return true
	}
	return false
}

// Manager is the event manager type used by the pipeline.
type Manager = events.Manager[*Event]

// Listener is a pipeline listener.
type Listener = events.Listener[*Event]

// NewManager creates an empty pipeline event manager.
func NewManager() *Manager {
	return events.NewManager[*Event]()
}

// Event is the single per-request event shared by every phase.
type Event struct {
	events.Base

	bus        *Manager
	request    message.Request
	response   message.Response
	writer     http.ResponseWriter
	routeMatch *router.RouteMatch
	result     any
	viewModel  *view.Model
	view       *view.View

	errKind      ErrorKind
	err          error
	handler      string
	handlerClass string

	phase Phase
}

// NewEvent creates an event in PhaseNew.
func NewEvent(bus *Manager, req message.Request, resp message.Response) *Event {
	return &Event{
		Base:     events.NewBase("", nil),
		bus:      bus,
		request:  req,
		response: resp,
		phase:    PhaseNew,
	}
}

// EventManager returns the manager that owns this request.
func (e *Event) EventManager() *Manager { return e.bus }

// SetEventManager replaces the owning manager.
func (e *Event) SetEventManager(bus *Manager) { e.bus = bus }

// Trigger runs the listeners of the event's current name.
func (e *Event) Trigger(ctx context.Context) (*events.ResponseCollection, error) {
	return e.bus.Trigger(ctx, e)
}

// Request returns the request.
func (e *Event) Request() message.Request { return e.request }

// SetRequest replaces the request.
func (e *Event) SetRequest(req message.Request) { e.request = req }

// Response returns the response.
func (e *Event) Response() message.Response { return e.response }

// SetResponse replaces the response.
func (e *Event) SetResponse(resp message.Response) { e.response = resp }

// ResponseWriter returns the HTTP destination, or nil for console requests.
func (e *Event) ResponseWriter() http.ResponseWriter { return e.writer }

// SetResponseWriter sets the HTTP destination.
func (e *Event) SetResponseWriter(w http.ResponseWriter) { e.writer = w }

// RouteMatch returns the routing outcome, or nil.
func (e *Event) RouteMatch() *router.RouteMatch { return e.routeMatch }

// SetRouteMatch sets the routing outcome.
func (e *Event) SetRouteMatch(m *router.RouteMatch) { e.routeMatch = m }

// Result returns the current result, or nil before any stage set one.
func (e *Event) Result() any { return e.result }

// SetResult sets the result.
func (e *Event) SetResult(result any) { e.result = result }

// ViewModel returns the root view model.
func (e *Event) ViewModel() *view.Model { return e.viewModel }

// SetViewModel sets the root view model.
func (e *Event) SetViewModel(m *view.Model) { e.viewModel = m }

// View returns the view engine used for rendering.
func (e *Event) View() *view.View { return e.view }

// SetView sets the view engine.
func (e *Event) SetView(v *view.View) { e.view = v }

// Error returns the error kind, or ErrorNone.
func (e *Event) Error() ErrorKind { return e.errKind }

// SetError sets the error kind.
func (e *Event) SetError(kind ErrorKind) { e.errKind = kind }

// IsError reports whether an error kind is set.
func (e *Event) IsError() bool { return e.errKind != ErrorNone }

// Cause returns the failure behind the error kind, if any.
func (e *Event) Cause() error { return e.err }

// SetCause records the failure behind the error kind.
func (e *Event) SetCause(err error) { e.err = err }

// Handler returns the handler identifier resolved for this request.
func (e *Event) Handler() string { return e.handler }

// SetHandler records the handler identifier.
func (e *Event) SetHandler(name string) { e.handler = name }

// HandlerClass returns a diagnostic description of the handler's type.
func (e *Event) HandlerClass() string { return e.handlerClass }

// SetHandlerClass records the handler's type description.
func (e *Event) SetHandlerClass(class string) { e.handlerClass = class }

// Phase returns the pipeline phase.
func (e *Event) Phase() Phase { return e.phase }

// Enter renames the event and moves it to the phase that name belongs to.
// It fails without changing anything when the move is not allowed.
func (e *Event) Enter(name string) error {
	next, ok := phaseOf[name]
	if !ok {
		e.SetName(name)
		return nil
	}
	if err := e.phase.check(next); err != nil {
		return err
	}
	e.phase = next
	e.SetName(name)
	return nil
}

// Done marks the request complete.
func (e *Event) Done() error {
	if err := e.phase.check(PhaseDone); err != nil {
		return err
	}
	e.phase = PhaseDone
	return nil
}
