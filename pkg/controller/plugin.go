package controller

import (
	"net/http"
	"slices"
	"sync"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/view"
)

// Plugin names registered by NewPluginManager.
const (
	PluginParams                  = "params"
	PluginLayout                  = "layout"
	PluginCreateHTTPNotFoundModel = "createHttpNotFoundModel"
)

// Controller is what plugins see of the controller that retrieved them.
type Controller interface {
	Event() *mvc.Event
}

// Plugin is a controller helper. The controller is injected on retrieval.
type Plugin interface {
	SetController(c Controller)
}

// PluginFactory builds a plugin.
type PluginFactory func() Plugin

// PluginManager builds controller plugins by name. Each Get returns a new
// plugin bound to the requesting controller; controllers cache what they
// retrieve for the duration of one request.
type PluginManager struct {
	mu        sync.RWMutex
	factories map[string]PluginFactory
}

// NewPluginManager creates a manager with the built-in plugins registered.
func NewPluginManager() *PluginManager {
	p := &PluginManager{factories: make(map[string]PluginFactory)}
	p.Register(PluginParams, func() Plugin { return &Params{} })
	p.Register(PluginLayout, func() Plugin { return &Layout{} })
	p.Register(PluginCreateHTTPNotFoundModel, func() Plugin { return &CreateHTTPNotFoundModel{} })
	return p
}

// Register adds or replaces a plugin factory.
func (p *PluginManager) Register(name string, factory PluginFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[name] = factory
}

// Has reports whether a plugin is registered.
func (p *PluginManager) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.factories[name]
	return ok
}

// Names returns the registered plugin names, sorted.
func (p *PluginManager) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.factories))
	for name := range p.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get builds the named plugin and binds it to c.
func (p *PluginManager) Get(name string, c Controller) (Plugin, error) {
	p.mu.RLock()
	factory, ok := p.factories[name]
	p.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("plugin", name)
	}
	plugin := factory()
	if c != nil {
		plugin.SetController(c)
	}
	return plugin, nil
}

// Params reads route match and query parameters of the current request.
type Params struct {
	controller Controller
}

// SetController implements Plugin.
func (p *Params) SetController(c Controller) { p.controller = c }

// FromRoute returns a route match parameter, or def.
func (p *Params) FromRoute(name, def string) string {
	e := p.event()
	if e == nil || e.RouteMatch() == nil {
		return def
	}
	return e.RouteMatch().Param(name, def)
}

// FromQuery returns a query parameter, or def when it is empty.
func (p *Params) FromQuery(name, def string) string {
	e := p.event()
	if e == nil || e.Request() == nil {
		return def
	}
	if v := e.Request().Query(name); v != "" {
		return v
	}
	return def
}

func (p *Params) event() *mvc.Event {
	if p.controller == nil {
		return nil
	}
	return p.controller.Event()
}

// Layout changes the root view model's template.
type Layout struct {
	controller Controller
}

// SetController implements Plugin.
func (l *Layout) SetController(c Controller) { l.controller = c }

// Template returns the current layout template, or "".
func (l *Layout) Template() string {
	if m := l.root(); m != nil {
		return m.Template()
	}
	return ""
}

// SetTemplate sets the layout template. It fails when there is no root
// view model to change.
func (l *Layout) SetTemplate(name string) error {
	m := l.root()
	if m == nil {
		return errors.NewConfigError("layout", "no root view model on the event", nil)
	}
	m.SetTemplate(name)
	return nil
}

func (l *Layout) root() *view.Model {
	if l.controller == nil || l.controller.Event() == nil {
		return nil
	}
	return l.controller.Event().ViewModel()
}

// CreateHTTPNotFoundModel marks the response 404 and returns the model
// handlers return for missing pages.
type CreateHTTPNotFoundModel struct {
	controller Controller
}

// SetController implements Plugin.
func (p *CreateHTTPNotFoundModel) SetController(c Controller) { p.controller = c }

// Create sets the status and returns the not-found model.
func (p *CreateHTTPNotFoundModel) Create() *view.Model {
	if p.controller != nil && p.controller.Event() != nil {
		if resp := p.controller.Event().Response(); resp != nil {
			resp.SetStatusCode(http.StatusNotFound)
		}
	}
	return view.NewModel(map[string]any{constants.DefaultContentCapture: "Page not found"})
}
