package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/waypoint/pkg/controller"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

func dispatch(t *testing.T, c *controller.ActionController, params map[string]string, target string) (any, *mvc.Event) {
	t.Helper()
	req := message.NewHTTPRequest(httptest.NewRequest(http.MethodGet, target, nil))
	e := mvc.NewEvent(mvc.NewManager(), req, message.NewHTTPResponse())
	e.SetRouteMatch(router.NewRouteMatch("test", params))
	e.SetViewModel(view.NewModel(nil))
	c.SetEvent(e)

	result, err := c.Dispatch(context.Background(), e.Request(), e.Response())
	require.NoError(t, err)
	return result, e
}

func TestActionName(t *testing.T) {
	tests := map[string]string{
		"index":     "Index",
		"not-found": "NotFound",
		"not_found": "NotFound",
		"notFound":  "NotFound",
		"list.all":  "ListAll",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, controller.ActionName(in), in)
	}
}

func TestActionControllerIndex(t *testing.T) {
	result, e := dispatch(t, controller.NewActionController("home"), map[string]string{}, "/")

	model, ok := result.(*view.Model)
	require.True(t, ok)
	assert.Equal(t, "Placeholder page", model.Variable("content"))
	assert.Equal(t, http.StatusOK, e.Response().StatusCode())
}

func TestActionControllerRegisteredAction(t *testing.T) {
	c := controller.NewActionController("users")
	c.Handle("showProfile", func(_ context.Context, c *controller.ActionController) (any, error) {
		return map[string]any{
			"id":     c.Params().FromRoute("id", ""),
			"format": c.Params().FromQuery("format", "html"),
		}, nil
	})
	assert.True(t, c.HasAction("show-profile"))

	result, _ := dispatch(t, c, map[string]string{"action": "show-profile", "id": "42"}, "/users/42?format=json")
	assert.Equal(t, map[string]any{"id": "42", "format": "json"}, result)
}

func TestActionControllerUnknownAction(t *testing.T) {
	result, e := dispatch(t, controller.NewActionController("home"), map[string]string{"action": "nope"}, "/")

	model, ok := result.(*view.Model)
	require.True(t, ok)
	assert.Equal(t, "Page not found", model.Variable("content"))
	assert.Equal(t, http.StatusNotFound, e.Response().StatusCode())
	assert.Equal(t, "not-found", e.RouteMatch().Param("action", ""))
}

func TestActionControllerLayoutPlugin(t *testing.T) {
	c := controller.NewActionController("home")
	c.Handle("index", func(_ context.Context, c *controller.ActionController) (any, error) {
		return nil, c.Layout().SetTemplate("layout/minimal")
	})

	_, e := dispatch(t, c, map[string]string{}, "/")
	assert.Equal(t, "layout/minimal", e.ViewModel().Template())
	assert.Equal(t, "layout/minimal", c.Layout().Template())
}

func TestPluginManager(t *testing.T) {
	p := controller.NewPluginManager()
	assert.Equal(t, []string{"createHttpNotFoundModel", "layout", "params"}, p.Names())
	assert.True(t, p.Has("params"))

	_, err := p.Get("missing", nil)
	assert.Error(t, err)

	c := controller.NewActionController("home")
	a, err := p.Get(controller.PluginParams, c)
	require.NoError(t, err)
	b, err := p.Get(controller.PluginParams, c)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	// Controllers cache their plugins for the request.
	c.SetPluginManager(p)
	first, err := c.Plugin(controller.PluginParams)
	require.NoError(t, err)
	second, err := c.Plugin(controller.PluginParams)
	require.NoError(t, err)
	assert.Same(t, first, second)

	layout := &controller.Layout{}
	assert.Error(t, layout.SetTemplate("x"), "no controller bound")
}
