package mvc

import (
	"context"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/view"
)

// RenderingStrategy renders the event's view model into its response. A
// failure is retried once through render.error; a failure during that retry
// is returned to the caller.
type RenderingStrategy struct {
	view    *view.View
	layout  string
	handles []*events.Handle
}

// NewRenderingStrategy creates a strategy rendering with v.
func NewRenderingStrategy(v *view.View) *RenderingStrategy {
	return &RenderingStrategy{view: v, layout: constants.DefaultLayoutTemplate}
}

// SetLayoutTemplate sets the layout template name.
func (s *RenderingStrategy) SetLayoutTemplate(name string) { s.layout = name }

// LayoutTemplate returns the layout template name.
func (s *RenderingStrategy) LayoutTemplate() string { return s.layout }

// Attach implements Aggregate.
func (s *RenderingStrategy) Attach(bus *Manager) {
	s.handles = append(s.handles,
		bus.Attach(EventRender, s.Render, constants.PriorityRender),
		bus.Attach(EventRenderError, s.Render, constants.PriorityRender),
	)
}

// Detach removes the listeners added by Attach.
func (s *RenderingStrategy) Detach(bus *Manager) {
	for _, h := range s.handles {
		bus.Detach(h)
	}
	s.handles = nil
}

// Render is the render and render.error listener.
func (s *RenderingStrategy) Render(ctx context.Context, e *Event) (any, error) {
	if resp, ok := e.Result().(message.Response); ok {
		return resp, nil
	}

	model := e.ViewModel()
	if model == nil {
		return nil, nil
	}

	v := s.view
	if ev := e.View(); ev != nil {
		v = ev
	}

	err := v.Render(ctx, model, e.Request(), e.Response())
	if err == nil {
		return e.Response(), nil
	}

	log := logging.FromContext(ctx)
	if e.Phase() == PhaseRenderErroring {
		log.Error().Err(err).Msg("Render error recovery failed")
		return nil, err
	}
	if enterErr := e.Enter(EventRenderError); enterErr != nil {
		log.Error().Err(enterErr).Msg("Cannot enter render error phase")
		return nil, err
	}

	log.Warn().Err(err).Msg("Render failed, retrying through render.error")
	e.SetError(ErrorException)
	e.SetCause(err)
	if _, err := e.Trigger(logging.WithPhase(ctx, EventRenderError)); err != nil {
		return nil, err
	}
	return e.Response(), nil
}
