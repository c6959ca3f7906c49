package mvc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/view"
)

func TestExceptionStrategyDefaults(t *testing.T) {
	s := mvc.NewExceptionStrategy()
	assert.False(t, s.DisplayExceptions())
	assert.Equal(t, "error", s.ExceptionTemplate())

	s.SetDisplayExceptions(true)
	s.SetExceptionTemplate("pages/error")
	assert.True(t, s.DisplayExceptions())
	assert.Equal(t, "pages/error", s.ExceptionTemplate())
}

func TestExceptionStrategyCatchesExceptions(t *testing.T) {
	for _, kind := range []mvc.ErrorKind{mvc.ErrorException, "custom_error"} {
		t.Run(string(kind), func(t *testing.T) {
			s := mvc.NewExceptionStrategy()
			cause := errors.New("boom")
			e := newDispatchEvent(mvc.NewManager(), "")
			e.SetError(kind)
			e.SetCause(cause)

			_, err := s.PrepareExceptionViewModel(context.Background(), e)
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, e.Response().StatusCode())
			model, ok := e.Result().(*view.Model)
			require.True(t, ok)
			assert.Equal(t, "error", model.Template())
			assert.Contains(t, model.Variable("message"), "error occurred")
			assert.Nil(t, model.Variable("exception"))
			assert.Equal(t, false, model.Variable("display_exceptions"))
		})
	}
}

func TestExceptionStrategyDisplaysCauseOnlyWhenEnabled(t *testing.T) {
	for _, display := range []bool{false, true} {
		t.Run(fmt.Sprint(display), func(t *testing.T) {
			s := mvc.NewExceptionStrategy()
			s.SetDisplayExceptions(display)
			cause := errors.New("db password rejected")
			e := newDispatchEvent(mvc.NewManager(), "")
			e.SetError(mvc.ErrorException)
			e.SetCause(cause)

			_, err := s.PrepareExceptionViewModel(context.Background(), e)
			require.NoError(t, err)

			model, ok := e.Result().(*view.Model)
			require.True(t, ok)
			assert.Equal(t, display, model.Variables().Has("exception"))
			if display {
				assert.Same(t, cause, model.Variable("exception"))
			}
		})
	}
}

func TestExceptionStrategyNoOps(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *mvc.Event)
	}{
		{"no error", func(*mvc.Event) {}},
		{"handler not found", func(e *mvc.Event) { e.SetError(mvc.ErrorHandlerNotFound) }},
		{"handler invalid", func(e *mvc.Event) { e.SetError(mvc.ErrorHandlerInvalid) }},
		{"router no match", func(e *mvc.Event) { e.SetError(mvc.ErrorRouterNoMatch) }},
		{"result is a response", func(e *mvc.Event) {
			e.SetError("foobar")
			e.SetResult(e.Response())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newDispatchEvent(mvc.NewManager(), "")
			tt.setup(e)
			before := e.Result()

			ret, err := mvc.NewExceptionStrategy().PrepareExceptionViewModel(context.Background(), e)
			require.NoError(t, err)
			assert.Nil(t, ret)
			assert.Equal(t, http.StatusOK, e.Response().StatusCode())
			assert.Equal(t, before, e.Result())
		})
	}
}

func TestExceptionStrategyReusesErrorStatus(t *testing.T) {
	e := newDispatchEvent(mvc.NewManager(), "")
	e.Response().SetStatusCode(http.StatusUnauthorized)
	e.SetError(mvc.ErrorException)

	_, err := mvc.NewExceptionStrategy().PrepareExceptionViewModel(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, e.Response().StatusCode())
}

func TestExceptionStrategyAttachDetach(t *testing.T) {
	bus := mvc.NewManager()
	s := mvc.NewExceptionStrategy()
	s.Attach(bus)

	handles := bus.Listeners(mvc.EventDispatchError)
	require.Len(t, handles, 1)
	assert.Equal(t, 1, handles[0].Priority)
	assert.Len(t, bus.Listeners(mvc.EventRenderError), 1)

	s.Detach(bus)
	assert.Empty(t, bus.Listeners(mvc.EventDispatchError))
}

func TestRouteNotFoundStrategy(t *testing.T) {
	bus := mvc.NewManager()
	s := mvc.NewRouteNotFoundStrategy()
	s.Attach(bus)

	e := newDispatchEvent(bus, "missing")
	require.NoError(t, e.Enter(mvc.EventDispatchError))
	e.SetError(mvc.ErrorHandlerNotFound)
	e.SetHandler("missing")
	e.SetHandlerClass("invalid handler class or alias: missing")

	_, err := e.Trigger(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, e.Response().StatusCode())
	model, ok := e.Result().(*view.Model)
	require.True(t, ok)
	assert.Equal(t, "error/404", model.Template())
	assert.Equal(t, "Page not found.", model.Variable("message"))
	assert.Equal(t, string(mvc.ErrorHandlerNotFound), model.Variable("reason"))
	assert.Equal(t, "missing", model.Variable("handler"))
	assert.Nil(t, model.Variable("exception"))
}

func TestRouteNotFoundStrategyWrapsHandler404(t *testing.T) {
	s := mvc.NewRouteNotFoundStrategy()
	s.SetNotFoundTemplate("pages/404")
	s.SetDisplayExceptions(true)

	e := newDispatchEvent(mvc.NewManager(), "home")
	e.Response().SetStatusCode(http.StatusNotFound)
	e.SetResult(view.NewModel(map[string]any{"id": 9}))

	_, err := s.PrepareNotFoundViewModel(context.Background(), e)
	require.NoError(t, err)

	model := e.Result().(*view.Model)
	assert.Equal(t, "pages/404", model.Template())
	assert.Equal(t, 9, model.Variable("id"))
	assert.Nil(t, model.Variable("reason"), "no error kind on a plain 404")
}

func TestRouteNotFoundStrategyIgnoresOtherStatuses(t *testing.T) {
	s := mvc.NewRouteNotFoundStrategy()
	e := newDispatchEvent(mvc.NewManager(), "home")
	e.SetResult("x")

	_, err := s.PrepareNotFoundViewModel(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "x", e.Result())

	resp := message.NewHTTPResponse()
	resp.SetStatusCode(http.StatusNotFound)
	e.SetResponse(resp)
	e.SetResult(resp)
	_, err = s.PrepareNotFoundViewModel(context.Background(), e)
	require.NoError(t, err)
	assert.Same(t, resp, e.Result())
}
