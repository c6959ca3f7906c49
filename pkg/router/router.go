package router

import (
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
)

// Route describes one path pattern. Segments starting with ':' capture the
// segment under that name.
type Route struct {
	Name     string            `yaml:"name"`
	Path     string            `yaml:"path"`
	Methods  []string          `yaml:"methods,omitempty"`
	Defaults map[string]string `yaml:"defaults,omitempty"`

	segments []string
}

// RouteFile is the on-disk route table format.
type RouteFile struct {
	Routes []Route `yaml:"routes"`
}

// Router holds routes in registration order; the first match wins.
type Router struct {
	mu     sync.RWMutex
	routes []*Route
}

// New creates a Router with the given routes.
func New(routes ...Route) (*Router, error) {
	r := &Router{}
	for _, route := range routes {
		if err := r.Add(route); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load reads a YAML route table.
func Load(src io.Reader) (*Router, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.WrapIO("read", "routes", err)
	}
	var file RouteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", "routes", err)
	}
	return New(file.Routes...)
}

// Add registers a route.
func (r *Router) Add(route Route) error {
	if route.Name == "" {
		return errors.NewValidationError("name", route.Name, "route name is required")
	}
	if !strings.HasPrefix(route.Path, "/") {
		return errors.NewValidationError("path", route.Path, "route path must start with /")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.routes {
		if existing.Name == route.Name {
			return errors.NewValidationError("name", route.Name, "duplicate route name")
		}
	}

	route.segments = split(route.Path)
	route.Methods = slices.Clone(route.Methods)
	for i, m := range route.Methods {
		route.Methods[i] = strings.ToUpper(m)
	}
	r.routes = append(r.routes, &route)
	return nil
}

// Routes returns a copy of the registered routes.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Route, len(r.routes))
	for i, route := range r.routes {
		out[i] = *route
	}
	return out
}

// Match returns the first route matching the request path. Method
// restrictions are ignored for requests without a method.
func (r *Router) Match(req message.Request) (*RouteMatch, bool) {
	segments := split(req.Path())

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.routes {
		params, ok := route.match(segments)
		if !ok {
			continue
		}
		if m := req.Method(); m != "" && len(route.Methods) > 0 && !slices.Contains(route.Methods, m) {
			if m != http.MethodHead || !slices.Contains(route.Methods, http.MethodGet) {
				continue
			}
		}
		return NewRouteMatch(route.Name, params), true
	}
	return nil, false
}

func (route *Route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(route.segments) {
		return nil, false
	}
	params := make(map[string]string, len(route.Defaults)+len(segments))
	for k, v := range route.Defaults {
		params[k] = v
	}
	for i, seg := range route.segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			params[name] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
