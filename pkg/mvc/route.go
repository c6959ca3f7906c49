package mvc

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/events"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/router"
)

// RouteListener matches the request against a router. A miss enters
// dispatch.error with ErrorRouterNoMatch.
type RouteListener struct {
	router  *router.Router
	handles []*events.Handle
}

// NewRouteListener creates a RouteListener.
func NewRouteListener(r *router.Router) *RouteListener {
	return &RouteListener{router: r}
}

// Attach implements Aggregate.
func (l *RouteListener) Attach(bus *Manager) {
	l.handles = append(l.handles, bus.Attach(EventRoute, l.OnRoute, constants.PriorityRoute))
}

// OnRoute is the route listener.
func (l *RouteListener) OnRoute(ctx context.Context, e *Event) (any, error) {
	if e.RouteMatch() != nil {
		return nil, nil
	}

	req := e.Request()
	if m, ok := l.router.Match(req); ok {
		e.SetRouteMatch(m)
		logging.FromContext(ctx).Debug().
			Str("route", m.MatchedRouteName()).
			Str("path", req.Path()).
			Msg("Route matched")
		return m, nil
	}

	logging.FromContext(ctx).Debug().Str("path", req.Path()).Msg("No route matched")
	if err := e.Enter(EventDispatchError); err != nil {
		return nil, err
	}
	e.SetError(ErrorRouterNoMatch)
	results, err := e.Trigger(logging.WithPhase(ctx, EventDispatchError))
	if err != nil {
		return nil, err
	}
	return results.Last(), nil
}

// DefaultAllowedMethods is used when no method list is configured.
var DefaultAllowedMethods = []string{
	http.MethodOptions,
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodTrace,
	http.MethodConnect,
	http.MethodPatch,
	"PROPFIND",
}

// HTTPMethodListener answers requests using a method outside the allowed
// set with 405 Method Not Allowed before routing.
type HTTPMethodListener struct {
	enabled bool
	allowed []string
}

// NewHTTPMethodListener creates a listener; an empty allowed list uses
// DefaultAllowedMethods.
func NewHTTPMethodListener(enabled bool, allowed []string) *HTTPMethodListener {
	l := &HTTPMethodListener{enabled: enabled}
	l.SetAllowedMethods(allowed)
	return l
}

// Enabled reports whether the listener attaches.
func (l *HTTPMethodListener) Enabled() bool { return l.enabled }

// SetEnabled toggles the listener.
func (l *HTTPMethodListener) SetEnabled(enabled bool) { l.enabled = enabled }

// AllowedMethods returns the upper-cased allowed methods.
func (l *HTTPMethodListener) AllowedMethods() []string { return slices.Clone(l.allowed) }

// SetAllowedMethods replaces the allowed methods.
func (l *HTTPMethodListener) SetAllowedMethods(methods []string) {
	if len(methods) == 0 {
		methods = DefaultAllowedMethods
	}
	l.allowed = make([]string, len(methods))
	for i, m := range methods {
		l.allowed[i] = strings.ToUpper(m)
	}
}

// Attach implements Aggregate. Nothing is attached when disabled.
func (l *HTTPMethodListener) Attach(bus *Manager) {
	if !l.enabled {
		return
	}
	bus.Attach(EventRoute, l.OnRoute, constants.PriorityHTTPMethod)
}

// OnRoute returns a 405 response for disallowed methods of HTTP requests.
func (l *HTTPMethodListener) OnRoute(ctx context.Context, e *Event) (any, error) {
	if _, ok := e.Request().(*message.HTTPRequest); !ok {
		return nil, nil
	}
	resp, ok := e.Response().(*message.HTTPResponse)
	if !ok {
		return nil, nil
	}

	method := strings.ToUpper(e.Request().Method())
	if slices.Contains(l.allowed, method) {
		return nil, nil
	}

	logging.FromContext(ctx).Info().Str("method", method).Msg("Method not allowed")
	resp.Header().Set("Allow", strings.Join(l.allowed, ","))
	resp.SetStatusCode(http.StatusMethodNotAllowed)
	return resp, nil
}
