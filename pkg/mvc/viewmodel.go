package mvc

import (
	"context"
	"strings"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/view"
)

// CreateViewModelListener turns plain handler results into view models:
// variables and string-keyed maps become model variables, a string becomes
// the "content" variable and nil becomes an empty model.
type CreateViewModelListener struct{}

// Attach implements Aggregate.
func (l CreateViewModelListener) Attach(bus *Manager) {
	bus.Attach(EventDispatch, l.CreateViewModel, constants.PriorityCreateViewModel)
}

// CreateViewModel is the dispatch listener.
func (CreateViewModelListener) CreateViewModel(_ context.Context, e *Event) (any, error) {
	switch r := e.Result().(type) {
	case nil:
		e.SetResult(view.NewModel(nil))
	case *view.Variables:
		if r == nil {
			e.SetResult(view.NewModel(nil))
			return nil, nil
		}
		e.SetResult(view.ModelFromVariables(r))
	case map[string]any:
		e.SetResult(view.NewModel(r))
	case string:
		e.SetResult(view.NewModel(map[string]any{constants.DefaultContentCapture: r}))
	}
	return nil, nil
}

// InjectTemplateListener names templates for models that have none, as
// "<handler>/<action>".
type InjectTemplateListener struct{}

// Attach implements Aggregate.
func (l InjectTemplateListener) Attach(bus *Manager) {
	bus.Attach(EventDispatch, l.InjectTemplate, constants.PriorityInjectTemplate)
}

// InjectTemplate is the dispatch listener.
func (InjectTemplateListener) InjectTemplate(_ context.Context, e *Event) (any, error) {
	model, ok := e.Result().(*view.Model)
	if !ok || model == nil || model.Template() != "" {
		return nil, nil
	}

	handler := e.Handler()
	action := constants.DefaultAction
	if m := e.RouteMatch(); m != nil {
		handler = m.Param(constants.DefaultHandlerParamName,
			m.Param(constants.FallbackHandlerParamName, handler))
		action = m.Param(constants.DefaultActionParamName, action)
	}
	if handler == "" {
		return nil, nil
	}
	model.SetTemplate(normalizeTemplateSegment(handler) + "/" + normalizeTemplateSegment(action))
	return nil, nil
}

func normalizeTemplateSegment(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
		case r == '_' || r == '.':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InjectViewModelListener places the result model into the root (layout)
// model, or makes it the root when it is terminal.
type InjectViewModelListener struct{}

// Attach implements Aggregate.
func (l InjectViewModelListener) Attach(bus *Manager) {
	bus.Attach(EventDispatch, l.InjectViewModel, constants.PriorityInjectViewModel)
	bus.Attach(EventDispatchError, l.InjectViewModel, constants.PriorityInjectViewModel)
	bus.Attach(EventRenderError, l.InjectViewModel, constants.PriorityInjectViewModel)
}

// InjectViewModel is the dispatch, dispatch.error and render.error listener.
func (InjectViewModelListener) InjectViewModel(_ context.Context, e *Event) (any, error) {
	result, ok := e.Result().(*view.Model)
	if !ok || result == nil {
		return nil, nil
	}

	root := e.ViewModel()
	if result.Terminal() || root == nil {
		e.SetViewModel(result)
		return nil, nil
	}
	if root == result {
		return nil, nil
	}
	if e.IsError() {
		root.ClearChildren()
	}
	root.AddChild(result, "")
	return nil, nil
}
