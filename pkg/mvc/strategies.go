package mvc

import (
	"context"
	"net/http"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/view"
)

// DefaultExceptionMessage is shown in place of internal failure details.
const DefaultExceptionMessage = "An error occurred during execution; please try again later."

// ExceptionStrategy answers failures that are not "not found" kinds with a
// 500 and an error view model.
type ExceptionStrategy struct {
	displayExceptions bool
	template          string
	message           string
	handles           []*events.Handle
}

// NewExceptionStrategy creates a strategy using the "error" template with
// exception details hidden.
func NewExceptionStrategy() *ExceptionStrategy {
	return &ExceptionStrategy{
		template: constants.DefaultErrorTemplate,
		message:  DefaultExceptionMessage,
	}
}

// DisplayExceptions reports whether the cause is exposed to templates.
func (s *ExceptionStrategy) DisplayExceptions() bool { return s.displayExceptions }

// SetDisplayExceptions toggles exposing the cause.
func (s *ExceptionStrategy) SetDisplayExceptions(display bool) { s.displayExceptions = display }

// ExceptionTemplate returns the error template name.
func (s *ExceptionStrategy) ExceptionTemplate() string { return s.template }

// SetExceptionTemplate sets the error template name.
func (s *ExceptionStrategy) SetExceptionTemplate(name string) { s.template = name }

// SetMessage sets the user-facing message.
func (s *ExceptionStrategy) SetMessage(msg string) { s.message = msg }

// Attach implements Aggregate.
func (s *ExceptionStrategy) Attach(bus *Manager) {
	s.handles = append(s.handles,
		bus.Attach(EventDispatchError, s.PrepareExceptionViewModel, constants.PriorityErrorStrategy),
		bus.Attach(EventRenderError, s.PrepareExceptionViewModel, constants.PriorityErrorStrategy),
	)
}

// Detach removes the listeners added by Attach.
func (s *ExceptionStrategy) Detach(bus *Manager) {
	for _, h := range s.handles {
		bus.Detach(h)
	}
	s.handles = nil
}

// PrepareExceptionViewModel is the dispatch.error and render.error listener.
func (s *ExceptionStrategy) PrepareExceptionViewModel(ctx context.Context, e *Event) (any, error) {
	kind := e.Error()
	if kind == ErrorNone || kind.IsNotFound() {
		return nil, nil
	}
	if _, ok := e.Result().(message.Response); ok {
		return nil, nil
	}

	vars := map[string]any{
		"message":            s.message,
		"display_exceptions": s.displayExceptions,
	}
	// JSON and YAML renderers write every variable.
	if s.displayExceptions && e.Cause() != nil {
		vars["exception"] = e.Cause()
	}
	model := view.NewModel(vars)
	model.SetTemplate(s.template)
	e.SetResult(model)

	if resp := e.Response(); resp != nil {
		status := resp.StatusCode()
		if status == 0 || status == http.StatusOK {
			status = http.StatusInternalServerError
		}
		resp.SetStatusCode(status)
	}

	logging.FromContext(ctx).Error().
		Err(e.Cause()).
		Str("error_kind", string(kind)).
		Str("handler", e.Handler()).
		Msg("Request failed")
	return nil, nil
}

// RouteNotFoundStrategy answers not-found kinds with a 404 and a not-found
// view model, and wraps 404 responses set by handlers the same way.
type RouteNotFoundStrategy struct {
	displayExceptions    bool
	displayNotFoundCause bool
	template             string
	handles              []*events.Handle
}

// NewRouteNotFoundStrategy creates a strategy using the "error/404" template.
func NewRouteNotFoundStrategy() *RouteNotFoundStrategy {
	return &RouteNotFoundStrategy{
		template:             constants.DefaultNotFoundTemplate,
		displayNotFoundCause: true,
	}
}

// SetDisplayExceptions toggles exposing the cause.
func (s *RouteNotFoundStrategy) SetDisplayExceptions(display bool) { s.displayExceptions = display }

// SetDisplayNotFoundReason toggles exposing the error kind.
func (s *RouteNotFoundStrategy) SetDisplayNotFoundReason(display bool) {
	s.displayNotFoundCause = display
}

// NotFoundTemplate returns the 404 template name.
func (s *RouteNotFoundStrategy) NotFoundTemplate() string { return s.template }

// SetNotFoundTemplate sets the 404 template name.
func (s *RouteNotFoundStrategy) SetNotFoundTemplate(name string) { s.template = name }

// Attach implements Aggregate.
func (s *RouteNotFoundStrategy) Attach(bus *Manager) {
	s.handles = append(s.handles,
		bus.Attach(EventDispatch, s.PrepareNotFoundViewModel, constants.PriorityInjectTemplate),
		bus.Attach(EventDispatchError, s.DetectNotFoundError, constants.PriorityErrorStrategy),
		bus.Attach(EventDispatchError, s.PrepareNotFoundViewModel, constants.PriorityErrorStrategy),
	)
}

// Detach removes the listeners added by Attach.
func (s *RouteNotFoundStrategy) Detach(bus *Manager) {
	for _, h := range s.handles {
		bus.Detach(h)
	}
	s.handles = nil
}

// DetectNotFoundError sets a 404 status for not-found kinds.
func (s *RouteNotFoundStrategy) DetectNotFoundError(_ context.Context, e *Event) (any, error) {
	if !e.Error().IsNotFound() {
		return nil, nil
	}
	if resp := e.Response(); resp != nil {
		resp.SetStatusCode(http.StatusNotFound)
	}
	return nil, nil
}

// PrepareNotFoundViewModel builds the 404 model when the response is a 404.
func (s *RouteNotFoundStrategy) PrepareNotFoundViewModel(ctx context.Context, e *Event) (any, error) {
	if _, ok := e.Result().(message.Response); ok {
		return nil, nil
	}
	resp := e.Response()
	if resp == nil || resp.StatusCode() != http.StatusNotFound {
		return nil, nil
	}

	model, ok := e.Result().(*view.Model)
	if !ok || model == nil {
		model = view.NewModel(nil)
	}
	model.SetVariable("message", "Page not found.")
	model.SetVariable("display_exceptions", s.displayExceptions)
	model.SetTemplate(s.template)

	if s.displayNotFoundCause && e.IsError() {
		model.SetVariable("reason", string(e.Error()))
		model.SetVariable("handler", e.Handler())
		model.SetVariable("handler_class", e.HandlerClass())
	}
	if s.displayExceptions && e.Cause() != nil {
		model.SetVariable("exception", e.Cause())
	}

	logging.FromContext(ctx).Info().
		Str("error_kind", string(e.Error())).
		Str("handler", e.Handler()).
		Msg("Not found")
	e.SetResult(model)
	return nil, nil
}
