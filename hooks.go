package waypoint

import (
	"context"
	"sync"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/mvc"
)

// Hook function types for pipeline events
type (
	// DispatchErrorHook is called after the dispatch.error listeners ran
	DispatchErrorHook func(ctx context.Context, e *mvc.Event)

	// RenderErrorHook is called before a failed render is retried
	RenderErrorHook func(ctx context.Context, e *mvc.Event)

	// FinishHook is called after the response was sent
	FinishHook func(ctx context.Context, e *mvc.Event)
)

// hooks manages callbacks for pipeline events
type hooks struct {
	mu              sync.RWMutex
	onDispatchError []DispatchErrorHook
	onRenderError   []RenderErrorHook
	onFinish        []FinishHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnDispatchError registers a callback for dispatch failures
func (h *hooks) OnDispatchError(fn DispatchErrorHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDispatchError = append(h.onDispatchError, fn)
}

// OnRenderError registers a callback for render failures
func (h *hooks) OnRenderError(fn RenderErrorHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRenderError = append(h.onRenderError, fn)
}

// OnFinish registers a callback for finished requests
func (h *hooks) OnFinish(fn FinishHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFinish = append(h.onFinish, fn)
}

// Attach wires the hooks into the pipeline. Hooks registered later still
// run because the listeners read the current lists.
func (h *hooks) Attach(bus *mvc.Manager) {
	bus.Attach(mvc.EventDispatchError, h.dispatchError, constants.PriorityMonitor)
	bus.Attach(mvc.EventRenderError, h.renderError, constants.PriorityMonitor)
	bus.Attach(mvc.EventFinish, h.finish, constants.PrioritySend-1)
}

func (h *hooks) dispatchError(ctx context.Context, e *mvc.Event) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDispatchError {
		fn(ctx, e)
	}
	return nil, nil
}

func (h *hooks) renderError(ctx context.Context, e *mvc.Event) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRenderError {
		fn(ctx, e)
	}
	return nil, nil
}

func (h *hooks) finish(ctx context.Context, e *mvc.Event) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onFinish {
		fn(ctx, e)
	}
	return nil, nil
}
