// Package view holds view models and the machinery that turns them into
// response bodies: template resolvers, renderers for HTML templates, JSON
// and YAML, and the View engine that selects a renderer per request.
package view

import (
	"maps"
	"slices"

	"github.com/goccy/go-json"
)

// Variables is a string-keyed bag of view variables. Keys are reported in
// sorted order so output is stable.
type Variables struct {
	m map[string]any
}

// NewVariables copies src into a new Variables.
func NewVariables(src map[string]any) *Variables {
	v := &Variables{m: make(map[string]any, len(src))}
	maps.Copy(v.m, src)
	return v
}

// Get returns a variable, or nil.
func (v *Variables) Get(name string) any {
	if v == nil {
		return nil
	}
	return v.m[name]
}

// Lookup returns a variable and whether it is set.
func (v *Variables) Lookup(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v.m[name]
	return val, ok
}

// Set assigns a variable.
func (v *Variables) Set(name string, value any) {
	if v.m == nil {
		v.m = make(map[string]any)
	}
	v.m[name] = value
}

// Has reports whether name is set.
func (v *Variables) Has(name string) bool {
	_, ok := v.Lookup(name)
	return ok
}

// Delete removes a variable.
func (v *Variables) Delete(name string) {
	delete(v.m, name)
}

// Keys returns the variable names in sorted order.
func (v *Variables) Keys() []string {
	if v == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(v.m))
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.m)
}

// Map returns a copy of the variables as a plain map.
func (v *Variables) Map() map[string]any {
	if v == nil {
		return map[string]any{}
	}
	return maps.Clone(v.m)
}

// MarshalJSON encodes the variables as a JSON object.
func (v *Variables) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// MarshalYAML encodes the variables as a YAML mapping.
func (v *Variables) MarshalYAML() (any, error) {
	return v.Map(), nil
}
