// Package events implements the synchronous, priority-ordered event manager
// that drives every phase of a waypoint request.
//
// Listeners attached with a higher priority run first; listeners with equal
// priority run in registration order. A trigger stops early when a listener
// sets the event's stop flag, when the caller's predicate accepts a listener
// result, or when a listener returns an error.
package events

import (
	"maps"
	"reflect"
	"slices"
)

// Event is the contract every event carried by a Manager satisfies.
type Event interface {
	Name() string
	PropagationIsStopped() bool
	StopPropagation(stop bool)
}

// Base is an embeddable Event implementation with a name, a target and a
// free-form parameter map.
type Base struct {
	name    string
	target  any
	params  map[string]any
	stopped bool
}

// NewBase creates a Base event.
func NewBase(name string, target any) Base {
	return Base{name: name, target: target, params: make(map[string]any)}
}

// Name returns the event name.
func (b *Base) Name() string { return b.name }

// SetName renames the event. Re-triggering a renamed event reaches the
// listeners of the new name.
func (b *Base) SetName(name string) { b.name = name }

// Target returns the object the event is about.
func (b *Base) Target() any { return b.target }

// SetTarget replaces the event target.
func (b *Base) SetTarget(target any) { b.target = target }

// Param returns a named parameter, or nil.
func (b *Base) Param(name string) any {
	return b.params[name]
}

// SetParam sets a named parameter.
func (b *Base) SetParam(name string, value any) {
	if b.params == nil {
		b.params = make(map[string]any)
	}
	b.params[name] = value
}

// Params returns a copy of all parameters.
func (b *Base) Params() map[string]any {
	return maps.Clone(b.params)
}

// ParamNames returns the parameter names in sorted order.
func (b *Base) ParamNames() []string {
	return slices.Sorted(maps.Keys(b.params))
}

// PropagationIsStopped reports whether a listener asked to halt the trigger.
func (b *Base) PropagationIsStopped() bool { return b.stopped }

// StopPropagation sets or clears the stop flag.
func (b *Base) StopPropagation(stop bool) { b.stopped = stop }

// Produced reports whether a listener return value counts as a result.
// Any non-nil value counts, including empty strings and empty collections;
// typed nil pointers, maps, slices, funcs, channels and interfaces do not.
func Produced(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
