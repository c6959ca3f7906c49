// Package router matches request paths to named routes and exposes the
// captured parameters as a RouteMatch.
package router

import (
	"maps"
	"slices"
)

// RouteMatch is the outcome of routing: the matched route name and the
// parameters captured from the path merged over the route defaults.
type RouteMatch struct {
	name   string
	params map[string]string
}

// NewRouteMatch creates a RouteMatch.
func NewRouteMatch(name string, params map[string]string) *RouteMatch {
	if params == nil {
		params = make(map[string]string)
	}
	return &RouteMatch{name: name, params: params}
}

// MatchedRouteName returns the route name.
func (m *RouteMatch) MatchedRouteName() string { return m.name }

// Param returns a parameter value or def when it is absent or empty.
func (m *RouteMatch) Param(name, def string) string {
	if v, ok := m.params[name]; ok && v != "" {
		return v
	}
	return def
}

// SetParam sets a parameter.
func (m *RouteMatch) SetParam(name, value string) {
	m.params[name] = value
}

// Params returns a copy of all parameters.
func (m *RouteMatch) Params() map[string]string {
	return maps.Clone(m.params)
}

// ParamNames returns the parameter names in sorted order.
func (m *RouteMatch) ParamNames() []string {
	return slices.Sorted(maps.Keys(m.params))
}
