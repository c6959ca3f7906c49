package controller

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/view"
)

// Action handles one action of an ActionController.
type Action func(ctx context.Context, c *ActionController) (any, error)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// ActionName normalizes an action name: "not-found", "not_found" and
// "notFound" all become "NotFound".
func ActionName(action string) string {
	parts := strings.FieldsFunc(action, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(titleCaser.String(p))
	}
	return b.String()
}

// ActionController dispatches to the action named by the route match
// "action" parameter. Index and NotFound are built in; registered actions
// override them. Unknown actions answer 404.
//
// An ActionController carries per-request state and must not be shared
// between requests; register it with Manager.Register.
type ActionController struct {
	name    string
	actions map[string]Action

	event   *mvc.Event
	bus     *mvc.Manager
	plugins *PluginManager
	cache   map[string]Plugin

	request  message.Request
	response message.Response
}

var (
	_ mvc.Handler        = (*ActionController)(nil)
	_ mvc.EventAware     = (*ActionController)(nil)
	_ EventManagerAware  = (*ActionController)(nil)
	_ PluginManagerAware = (*ActionController)(nil)
)

// NewActionController creates a controller with the built-in actions.
func NewActionController(name string) *ActionController {
	c := &ActionController{
		name:    name,
		actions: make(map[string]Action),
		cache:   make(map[string]Plugin),
	}
	c.Handle(constants.DefaultAction, IndexAction)
	c.Handle("not-found", NotFoundAction)
	return c
}

// Name returns the controller name.
func (c *ActionController) Name() string { return c.name }

// Handle registers fn under the normalized action name.
func (c *ActionController) Handle(action string, fn Action) *ActionController {
	c.actions[ActionName(action)] = fn
	return c
}

// HasAction reports whether an action is registered.
func (c *ActionController) HasAction(action string) bool {
	_, ok := c.actions[ActionName(action)]
	return ok
}

// Event implements Controller.
func (c *ActionController) Event() *mvc.Event { return c.event }

// SetEvent implements mvc.EventAware.
func (c *ActionController) SetEvent(e *mvc.Event) { c.event = e }

// EventManager returns the injected event manager.
func (c *ActionController) EventManager() *mvc.Manager { return c.bus }

// SetEventManager implements EventManagerAware.
func (c *ActionController) SetEventManager(bus *mvc.Manager) { c.bus = bus }

// PluginManager returns the injected plugin manager.
func (c *ActionController) PluginManager() *PluginManager { return c.plugins }

// SetPluginManager implements PluginManagerAware.
func (c *ActionController) SetPluginManager(p *PluginManager) {
	c.plugins = p
	clear(c.cache)
}

// Request returns the request being dispatched.
func (c *ActionController) Request() message.Request { return c.request }

// Response returns the response being prepared.
func (c *ActionController) Response() message.Response { return c.response }

// Plugin returns the named plugin bound to this controller.
func (c *ActionController) Plugin(name string) (Plugin, error) {
	if p, ok := c.cache[name]; ok {
		return p, nil
	}
	if c.plugins == nil {
		c.plugins = NewPluginManager()
	}
	p, err := c.plugins.Get(name, c)
	if err != nil {
		return nil, err
	}
	c.cache[name] = p
	return p, nil
}

// Params returns the params plugin.
func (c *ActionController) Params() *Params {
	p, err := c.Plugin(PluginParams)
	if params, ok := p.(*Params); ok && err == nil {
		return params
	}
	return &Params{controller: c}
}

// Layout returns the layout plugin.
func (c *ActionController) Layout() *Layout {
	p, err := c.Plugin(PluginLayout)
	if layout, ok := p.(*Layout); ok && err == nil {
		return layout
	}
	return &Layout{controller: c}
}

// NotFoundModel sets a 404 status and returns the not-found model.
func (c *ActionController) NotFoundModel() *view.Model {
	p, err := c.Plugin(PluginCreateHTTPNotFoundModel)
	if create, ok := p.(*CreateHTTPNotFoundModel); ok && err == nil {
		return create.Create()
	}
	return (&CreateHTTPNotFoundModel{controller: c}).Create()
}

// Dispatch implements mvc.Handler.
func (c *ActionController) Dispatch(ctx context.Context, req message.Request, resp message.Response) (any, error) {
	c.request = req
	c.response = resp

	action := constants.DefaultAction
	if c.event != nil && c.event.RouteMatch() != nil {
		action = c.event.RouteMatch().Param(constants.DefaultActionParamName, action)
	}

	fn, ok := c.actions[ActionName(action)]
	if !ok {
		logging.FromContext(ctx).Debug().
			Str("controller", c.name).
			Str("action", action).
			Msg("Unknown action")
		fn = c.actions[ActionName("not-found")]
		if c.event != nil && c.event.RouteMatch() != nil {
			c.event.RouteMatch().SetParam(constants.DefaultActionParamName, "not-found")
		}
	}
	return fn(ctx, c)
}

// IndexAction is the default index action.
func IndexAction(context.Context, *ActionController) (any, error) {
	return view.NewModel(map[string]any{constants.DefaultContentCapture: "Placeholder page"}), nil
}

// NotFoundAction answers 404 with the not-found model.
func NotFoundAction(_ context.Context, c *ActionController) (any, error) {
	if c.response != nil {
		c.response.SetStatusCode(http.StatusNotFound)
	}
	return c.NotFoundModel(), nil
}
