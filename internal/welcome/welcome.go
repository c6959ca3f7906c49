// Package welcome is the sample site served when no application is
// configured: a couple of action controllers, a streamed static file and
// embedded templates.
package welcome

import (
	"context"
	"embed"
	"strings"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/pkg/controller"
	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

//go:embed templates static
var content embed.FS

// Routes is the sample route table.
func Routes() []router.Route {
	return []router.Route{
		{Name: "home", Path: "/", Defaults: map[string]string{"handler": "home"}},
		{Name: "home-action", Path: "/home/:action", Defaults: map[string]string{"handler": "home"}},
		{Name: "greet", Path: "/greet/:name", Methods: []string{"GET"}, Defaults: map[string]string{"handler": "greeter"}},
		{Name: "robots", Path: "/robots.txt", Defaults: map[string]string{"handler": "robots"}},
	}
}

// Resolver resolves the embedded templates.
func Resolver() view.Resolver {
	return view.NewPathStack(content, "templates")
}

// Options registers the sample routes, templates and handlers.
func Options() []waypoint.Option {
	return []waypoint.Option{
		waypoint.WithRoutes(Routes()...),
		waypoint.WithResolver(Resolver()),
		waypoint.WithHandler("home", NewHomeController),
		waypoint.WithHandler("greeter", NewGreeterController),
		waypoint.WithSharedHandler("robots", func(context.Context) (any, error) {
			return mvc.HandlerFunc(robots), nil
		}),
	}
}

// NewHomeController serves the landing and about pages.
func NewHomeController(context.Context) (any, error) {
	c := controller.NewActionController("home")
	c.Handle("index", func(_ context.Context, c *controller.ActionController) (any, error) {
		var paths []string
		for _, r := range Routes() {
			paths = append(paths, r.Path)
		}
		return map[string]any{
			"title":   "Welcome to waypoint",
			"message": "Every request was routed, dispatched, rendered and sent by listeners on one event manager.",
			"routes":  paths,
		}, nil
	})
	c.Handle("about", func(_ context.Context, c *controller.ActionController) (any, error) {
		if err := c.Layout().SetTemplate("layout/minimal"); err != nil {
			return nil, err
		}
		return view.NewVariables(map[string]any{
			"message": "A small request dispatch core.",
		}), nil
	})
	return c, nil
}

// NewGreeterController greets the name in the route.
func NewGreeterController(context.Context) (any, error) {
	c := controller.NewActionController("greeter")
	c.Handle("index", func(_ context.Context, c *controller.ActionController) (any, error) {
		name := c.Params().FromRoute("name", "world")
		if strings.TrimSpace(name) == "" {
			return c.NotFoundModel(), nil
		}
		greeting := "Hello, " + name
		if c.Params().FromQuery("shout", "") != "" {
			greeting = strings.ToUpper(greeting) + "!"
		}
		return map[string]any{"greeting": greeting}, nil
	})
	return c, nil
}

func robots(_ context.Context, _ message.Request, _ message.Response) (any, error) {
	f, err := content.Open("static/robots.txt")
	if err != nil {
		return nil, errors.WrapIO("open", "static/robots.txt", err)
	}
	resp := message.NewStreamResponse(f)
	resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
	return resp, nil
}
