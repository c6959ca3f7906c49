// Package waypoint runs requests through an event-driven pipeline: a
// request is routed, dispatched to a handler, rendered through a view and
// finally sent. Every phase is a set of listeners on one event manager, so
// applications change behavior by attaching listeners rather than by
// replacing the pipeline.
package waypoint

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/agentstation/waypoint/pkg/controller"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/sender"
	"github.com/agentstation/waypoint/pkg/view"
)

// Application runs requests through the route, dispatch, render and finish
// phases.
type Application interface {
	http.Handler

	// Bootstrap attaches the default listeners. Run calls it on first use.
	Bootstrap() error

	// Run processes one request. w is the HTTP destination and may be nil
	// for console requests. The returned response is the one that was sent.
	Run(ctx context.Context, req message.Request, resp message.Response, w http.ResponseWriter) (message.Response, error)

	// EventManager returns the pipeline event manager.
	EventManager() *mvc.Manager

	// Handlers returns the handler registry.
	Handlers() mvc.HandlerRegistry

	// Router returns the router.
	Router() *router.Router

	// View returns the view engine.
	View() *view.View

	// SendChain returns the response transmission chain.
	SendChain() *sender.Chain

	// OnDispatchError registers a callback for dispatch failures
	OnDispatchError(DispatchErrorHook)

	// OnRenderError registers a callback for render failures
	OnRenderError(RenderErrorHook)

	// OnFinish registers a callback run after the response was sent
	OnFinish(FinishHook)
}

// application is the internal implementation of the Application interface
type application struct {
	config *config

	bus       *mvc.Manager
	registry  mvc.HandlerRegistry
	router    *router.Router
	view      *view.View
	chain     *sender.Chain
	rendering *mvc.RenderingStrategy

	bootstrap    sync.Once
	bootstrapErr error

	hooks *hooks
}

// New creates a new Application with the given options
func New(opts ...Option) (Application, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	app := &application{
		config: cfg,
		bus:    cfg.bus,
		router: cfg.router,
		hooks:  newHooks(),
	}
	if app.bus == nil {
		app.bus = mvc.NewManager()
	}
	if app.router == nil {
		r, err := router.New()
		if err != nil {
			return nil, fmt.Errorf("creating router: %w", err)
		}
		app.router = r
	}

	app.registry = cfg.registry
	if app.registry == nil {
		handlers := controller.NewManager(app.bus, cfg.plugins)
		for _, reg := range cfg.handlers {
			if reg.shared {
				handlers.RegisterShared(reg.name, reg.factory)
			} else {
				handlers.Register(reg.name, reg.factory)
			}
		}
		app.registry = handlers
	}

	app.view = cfg.view
	if app.view == nil {
		app.view = defaultView(cfg.resolver)
	}
	app.chain = sender.NewChain(cfg.console)

	return app, nil
}

func defaultView(resolver view.Resolver) *view.View {
	if resolver == nil {
		resolver = view.NewAggregateResolver()
	}
	v := view.New(view.NewTemplateRenderer(resolver, nil))
	v.Register(&view.JSONRenderer{Indent: true}, "text/json")
	v.Register(&view.YAMLRenderer{}, "application/x-yaml", "text/yaml")
	return v
}

// Bootstrap attaches the default listeners in their priority slots.
func (a *application) Bootstrap() error {
	a.bootstrap.Do(func() {
		cfg := a.config
		if cfg.layout == "" {
			a.bootstrapErr = errors.NewConfigError("view_manager", "layout template is required", nil)
			return
		}

		notFound := mvc.NewRouteNotFoundStrategy()
		notFound.SetDisplayExceptions(cfg.displayExceptions)
		notFound.SetDisplayNotFoundReason(cfg.displayNotFoundReason)
		notFound.SetNotFoundTemplate(cfg.notFoundTemplate)

		exception := mvc.NewExceptionStrategy()
		exception.SetDisplayExceptions(cfg.displayExceptions)
		exception.SetExceptionTemplate(cfg.exceptionTemplate)
		if cfg.exceptionMessage != "" {
			exception.SetMessage(cfg.exceptionMessage)
		}

		a.rendering = mvc.NewRenderingStrategy(a.view)
		a.rendering.SetLayoutTemplate(cfg.layout)

		dispatch := mvc.NewDispatchListener(a.registry)
		if cfg.monitor != nil {
			dispatch.WithMonitor(cfg.monitor)
		}

		aggregates := []mvc.Aggregate{
			mvc.NewHTTPMethodListener(cfg.httpMethodsEnabled, cfg.allowedMethods),
			mvc.NewRouteListener(a.router),
			dispatch,
			notFound,
			exception,
			mvc.CreateViewModelListener{},
			mvc.InjectTemplateListener{},
			mvc.InjectViewModelListener{},
			a.rendering,
			mvc.NewSendResponseListener(a.chain),
			a.hooks,
		}
		for _, agg := range append(aggregates, cfg.listeners...) {
			agg.Attach(a.bus)
		}

		logging.Debug().
			Int("routes", len(a.router.Routes())).
			Str("layout", cfg.layout).
			Bool("display_exceptions", cfg.displayExceptions).
			Msg("Application bootstrapped")
	})
	return a.bootstrapErr
}

// EventManager returns the pipeline event manager
func (a *application) EventManager() *mvc.Manager { return a.bus }

// Handlers returns the handler registry
func (a *application) Handlers() mvc.HandlerRegistry { return a.registry }

// Router returns the router
func (a *application) Router() *router.Router { return a.router }

// View returns the view engine
func (a *application) View() *view.View { return a.view }

// SendChain returns the response transmission chain
func (a *application) SendChain() *sender.Chain { return a.chain }

// OnDispatchError registers a callback for dispatch failures
func (a *application) OnDispatchError(fn DispatchErrorHook) { a.hooks.OnDispatchError(fn) }

// OnRenderError registers a callback for render failures
func (a *application) OnRenderError(fn RenderErrorHook) { a.hooks.OnRenderError(fn) }

// OnFinish registers a callback run after the response was sent
func (a *application) OnFinish(fn FinishHook) { a.hooks.OnFinish(fn) }

// ServeHTTP runs an HTTP request through the pipeline.
func (a *application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := message.Response(message.NewHTTPResponse())
	sent, err := a.Run(r.Context(), message.NewHTTPRequest(r), resp, w)
	if err == nil {
		return
	}

	logging.FromContext(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request pipeline failed")

	if sent != nil {
		resp = sent
	}
	if !resp.SendState().HeadersSent() {
		resp.SendState().MarkHeadersSent()
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
