package waypoint

import (
	"io"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/controller"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

// Option is a function that configures an Application
type Option func(*config) error

type handlerRegistration struct {
	name    string
	factory controller.Factory
	shared  bool
}

// config holds the settings applied by options
type config struct {
	bus      *mvc.Manager
	router   *router.Router
	registry mvc.HandlerRegistry
	handlers []handlerRegistration
	plugins  *controller.PluginManager

	view     *view.View
	resolver view.Resolver
	console  io.Writer

	layout                string
	exceptionTemplate     string
	notFoundTemplate      string
	exceptionMessage      string
	displayExceptions     bool
	displayNotFoundReason bool

	httpMethodsEnabled bool
	allowedMethods     []string

	monitor   mvc.Monitor
	listeners []mvc.Aggregate
}

func defaultConfig() *config {
	return &config{
		plugins:               controller.NewPluginManager(),
		layout:                constants.DefaultLayoutTemplate,
		exceptionTemplate:     constants.DefaultErrorTemplate,
		notFoundTemplate:      constants.DefaultNotFoundTemplate,
		displayNotFoundReason: true,
		httpMethodsEnabled:    true,
	}
}

// WithEventManager uses bus instead of a new event manager
func WithEventManager(bus *mvc.Manager) Option {
	return func(c *config) error {
		c.bus = bus
		return nil
	}
}

// WithRouter configures the router used by the route phase
func WithRouter(r *router.Router) Option {
	return func(c *config) error {
		c.router = r
		return nil
	}
}

// WithRoutes builds a router from routes
func WithRoutes(routes ...router.Route) Option {
	return func(c *config) error {
		r, err := router.New(routes...)
		if err != nil {
			return err
		}
		c.router = r
		return nil
	}
}

// WithHandler registers a handler factory that builds one instance per request
func WithHandler(name string, factory controller.Factory) Option {
	return func(c *config) error {
		c.handlers = append(c.handlers, handlerRegistration{name: name, factory: factory})
		return nil
	}
}

// WithSharedHandler registers a handler factory whose instance is reused
func WithSharedHandler(name string, factory controller.Factory) Option {
	return func(c *config) error {
		c.handlers = append(c.handlers, handlerRegistration{name: name, factory: factory, shared: true})
		return nil
	}
}

// WithHandlerRegistry replaces the built-in handler manager. Handlers
// registered with WithHandler are ignored when a registry is given.
func WithHandlerRegistry(registry mvc.HandlerRegistry) Option {
	return func(c *config) error {
		c.registry = registry
		return nil
	}
}

// WithPluginManager configures the controller plugin manager
func WithPluginManager(p *controller.PluginManager) Option {
	return func(c *config) error {
		c.plugins = p
		return nil
	}
}

// WithView configures the view engine
func WithView(v *view.View) Option {
	return func(c *config) error {
		c.view = v
		return nil
	}
}

// WithResolver configures the template resolver of the default view engine
func WithResolver(r view.Resolver) Option {
	return func(c *config) error {
		c.resolver = r
		return nil
	}
}

// WithConsoleOutput configures where console responses are written
func WithConsoleOutput(w io.Writer) Option {
	return func(c *config) error {
		c.console = w
		return nil
	}
}

// WithLayoutTemplate configures the layout template of the root view model
func WithLayoutTemplate(name string) Option {
	return func(c *config) error {
		c.layout = name
		return nil
	}
}

// WithExceptionTemplate configures the template used for failures
func WithExceptionTemplate(name string) Option {
	return func(c *config) error {
		c.exceptionTemplate = name
		return nil
	}
}

// WithNotFoundTemplate configures the template used for 404 responses
func WithNotFoundTemplate(name string) Option {
	return func(c *config) error {
		c.notFoundTemplate = name
		return nil
	}
}

// WithExceptionMessage configures the message shown for failures
func WithExceptionMessage(msg string) Option {
	return func(c *config) error {
		c.exceptionMessage = msg
		return nil
	}
}

// WithDisplayExceptions configures whether failure causes reach templates
func WithDisplayExceptions(display bool) Option {
	return func(c *config) error {
		c.displayExceptions = display
		return nil
	}
}

// WithDisplayNotFoundReason configures whether 404 models carry the reason
func WithDisplayNotFoundReason(display bool) Option {
	return func(c *config) error {
		c.displayNotFoundReason = display
		return nil
	}
}

// WithHTTPMethods configures the method check run before routing. An empty
// allowed list uses the default method set.
func WithHTTPMethods(enabled bool, allowed ...string) Option {
	return func(c *config) error {
		c.httpMethodsEnabled = enabled
		c.allowedMethods = allowed
		return nil
	}
}

// WithMonitor configures the reporter for dispatch failures
func WithMonitor(m mvc.Monitor) Option {
	return func(c *config) error {
		c.monitor = m
		return nil
	}
}

// WithListener attaches an additional listener aggregate at bootstrap
func WithListener(agg mvc.Aggregate) Option {
	return func(c *config) error {
		c.listeners = append(c.listeners, agg)
		return nil
	}
}
