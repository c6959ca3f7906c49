package mvc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/waypoint/pkg/controller"
	pkgerrors "github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/router"
	"github.com/agentstation/waypoint/pkg/view"
)

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Has(name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

func (m *MockRegistry) Get(ctx context.Context, name string) (mvc.Handler, error) {
	args := m.Called(ctx, name)
	h, _ := args.Get(0).(mvc.Handler)
	return h, args.Error(1)
}

type capturedError struct {
	kind  mvc.ErrorKind
	name  string
	class string
	cause error
}

// errorRecorder attaches a dispatch.error listener that records what it saw
// and returns ret.
func errorRecorder(bus *mvc.Manager, ret any) *[]capturedError {
	var seen []capturedError
	bus.Attach(mvc.EventDispatchError, func(_ context.Context, e *mvc.Event) (any, error) {
		seen = append(seen, capturedError{e.Error(), e.Handler(), e.HandlerClass(), e.Cause()})
		return ret, nil
	}, 1)
	return &seen
}

func newDispatchEvent(bus *mvc.Manager, handler string) *mvc.Event {
	req := message.NewHTTPRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	e := mvc.NewEvent(bus, req, message.NewHTTPResponse())
	if handler != "" {
		e.SetRouteMatch(router.NewRouteMatch("test", map[string]string{"handler": handler}))
	}
	return e
}

type stubHandler struct {
	result any
	err    error
	panic  any
	event  *mvc.Event
}

func (h *stubHandler) Dispatch(context.Context, message.Request, message.Response) (any, error) {
	if h.panic != nil {
		panic(h.panic)
	}
	return h.result, h.err
}

func (h *stubHandler) SetEvent(e *mvc.Event) { h.event = e }

func TestDispatchHandlerNotFound(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, "Not found")

	reg := new(MockRegistry)
	reg.On("Has", "missing").Return(false)
	d := mvc.NewDispatchListener(reg)

	e := newDispatchEvent(bus, "missing")
	ret, err := d.OnDispatch(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, mvc.ErrorHandlerNotFound, (*seen)[0].kind)
	assert.Equal(t, "missing", (*seen)[0].name)
	assert.Equal(t, "invalid handler class or alias: missing", (*seen)[0].class)
	assert.Nil(t, (*seen)[0].cause)

	assert.Equal(t, "Not found", ret)
	assert.Equal(t, "Not found", e.Result())
	assert.Equal(t, mvc.EventDispatchError, e.Name())
	assert.Equal(t, mvc.PhaseErroring, e.Phase())
	reg.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDispatchDefaultsToNotFoundHandler(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, nil)

	reg := new(MockRegistry)
	reg.On("Has", "not-found").Return(false)

	_, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), newDispatchEvent(bus, ""))
	require.NoError(t, err)
	require.Len(t, *seen, 1)
	assert.Equal(t, "not-found", (*seen)[0].name)
	reg.AssertExpectations(t)
}

func TestDispatchControllerParamFallback(t *testing.T) {
	bus := mvc.NewManager()
	reg := new(MockRegistry)
	reg.On("Has", "legacy").Return(true)
	reg.On("Get", mock.Anything, "legacy").Return(&stubHandler{result: "ok"}, nil)

	e := newDispatchEvent(bus, "")
	e.SetRouteMatch(router.NewRouteMatch("legacy", map[string]string{"controller": "legacy"}))

	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "ok", ret)
}

func TestDispatchHandlerInvalid(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, nil)

	invalid := pkgerrors.NewInvalidServiceError("broken", struct{}{}, "mvc.Handler")
	reg := new(MockRegistry)
	reg.On("Has", "broken").Return(true)
	reg.On("Get", mock.Anything, "broken").Return(nil, invalid)

	e := newDispatchEvent(bus, "broken")
	_, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, mvc.ErrorHandlerInvalid, (*seen)[0].kind)
	assert.Equal(t, "invalid handler class or alias: broken", (*seen)[0].class)
	assert.ErrorIs(t, (*seen)[0].cause, invalid)
}

func TestDispatchHandlerFactoryFailure(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, nil)

	boom := errors.New("factory exploded")
	reg := new(MockRegistry)
	reg.On("Has", "home").Return(true)
	reg.On("Get", mock.Anything, "home").Return(nil, boom)

	e := newDispatchEvent(bus, "home")
	_, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, mvc.ErrorException, (*seen)[0].kind)
	assert.Empty(t, (*seen)[0].class)
	assert.ErrorIs(t, (*seen)[0].cause, boom)
}

func TestDispatchHandlerFactoryPanics(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *controller.Manager)
	}{
		{
			name: "factory",
			setup: func(m *controller.Manager) {
				m.Register("boom", func(context.Context) (any, error) {
					panic("factory exploded")
				})
			},
		},
		{
			name: "initializer",
			setup: func(m *controller.Manager) {
				m.RegisterHandler("boom", &stubHandler{})
				m.AddInitializer(func(string, any) { panic("factory exploded") })
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := mvc.NewManager()
			seen := errorRecorder(bus, "recovered")
			reg := controller.NewManager(bus, nil)
			tt.setup(reg)

			e := newDispatchEvent(bus, "boom")
			var ret any
			require.NotPanics(t, func() {
				var err error
				ret, err = mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
				require.NoError(t, err)
			})
			assert.Equal(t, "recovered", ret)

			require.Len(t, *seen, 1)
			assert.Equal(t, mvc.ErrorException, (*seen)[0].kind)
			assert.Equal(t, "boom", (*seen)[0].name)
			var herr *pkgerrors.HandlerError
			require.ErrorAs(t, (*seen)[0].cause, &herr)
			assert.Equal(t, "factory exploded", herr.Panic)
			assert.Equal(t, mvc.PhaseErroring, e.Phase())
		})
	}
}

func TestDispatchHandlerError(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, nil)
	fallback := view.NewModel(map[string]any{"message": "sorry"})
	bus.Attach(mvc.EventDispatchError, func(_ context.Context, e *mvc.Event) (any, error) {
		e.SetResult(fallback)
		return nil, nil
	}, 0)

	boom := errors.New("boom")
	h := &stubHandler{err: boom}
	reg := new(MockRegistry)
	reg.On("Has", "home").Return(true)
	reg.On("Get", mock.Anything, "home").Return(h, nil)

	e := newDispatchEvent(bus, "home")
	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	assert.Equal(t, mvc.ErrorException, (*seen)[0].kind)
	assert.Equal(t, "home", (*seen)[0].name)
	assert.Equal(t, "*mvc_test.stubHandler", (*seen)[0].class)
	assert.ErrorIs(t, (*seen)[0].cause, boom)

	assert.Same(t, fallback, ret, "falls back to the event result when listeners produce nothing")
	assert.Same(t, e, h.event, "event-aware handlers receive the event")
}

func TestDispatchRecoversPanics(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, "recovered")

	reg := new(MockRegistry)
	reg.On("Has", "home").Return(true)
	reg.On("Get", mock.Anything, "home").Return(&stubHandler{panic: "kaboom"}, nil)

	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), newDispatchEvent(bus, "home"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", ret)

	require.Len(t, *seen, 1)
	var herr *pkgerrors.HandlerError
	require.ErrorAs(t, (*seen)[0].cause, &herr)
	assert.Equal(t, "kaboom", herr.Panic)
}

func TestDispatchErrorListenerFailureIsContained(t *testing.T) {
	bus := mvc.NewManager()
	bus.Attach(mvc.EventDispatchError, func(context.Context, *mvc.Event) (any, error) {
		return nil, errors.New("listener broke")
	}, 1)

	reg := new(MockRegistry)
	reg.On("Has", "missing").Return(false)

	e := newDispatchEvent(bus, "missing")
	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Equal(t, mvc.ErrorHandlerNotFound, e.Error())
}

func TestDispatchSkipsWhenResultAlreadySet(t *testing.T) {
	bus := mvc.NewManager()
	reg := new(MockRegistry)

	e := newDispatchEvent(bus, "home")
	e.SetResult("cached")

	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Equal(t, "cached", e.Result())
	reg.AssertNotCalled(t, "Has", mock.Anything)
	reg.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDispatchWrapsStringKeyedMaps(t *testing.T) {
	tests := []struct {
		name   string
		result any
	}{
		{"any values", map[string]any{"content": "hello"}},
		{"string values", map[string]string{"content": "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := mvc.NewManager()
			reg := new(MockRegistry)
			reg.On("Has", "home").Return(true)
			reg.On("Get", mock.Anything, "home").Return(&stubHandler{result: tt.result}, nil)

			e := newDispatchEvent(bus, "home")
			ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
			require.NoError(t, err)

			vars, ok := ret.(*view.Variables)
			require.True(t, ok, "got %T", ret)
			assert.Equal(t, "hello", vars.Get("content"))
			assert.Same(t, vars, e.Result())
		})
	}
}

func TestDispatchKeepsOtherResults(t *testing.T) {
	model := view.NewModel(nil)
	resp := message.NewHTTPResponse()
	for _, result := range []any{"", model, resp, map[string]any{}} {
		bus := mvc.NewManager()
		reg := new(MockRegistry)
		reg.On("Has", "home").Return(true)
		reg.On("Get", mock.Anything, "home").Return(&stubHandler{result: result}, nil)

		e := newDispatchEvent(bus, "home")
		ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
		require.NoError(t, err)
		assert.Equal(t, result, ret)
		assert.Equal(t, mvc.PhaseNew, e.Phase(), "no error phase entered")
	}
}

func TestDispatchDoesNotRetriggerWhileErroring(t *testing.T) {
	bus := mvc.NewManager()
	seen := errorRecorder(bus, "again")

	reg := new(MockRegistry)
	reg.On("Has", "missing").Return(false)

	e := newDispatchEvent(bus, "missing")
	require.NoError(t, e.Enter(mvc.EventDispatchError))
	e.SetResult(nil)

	ret, err := mvc.NewDispatchListener(reg).OnDispatch(context.Background(), e)
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Empty(t, *seen)
}

type recordingMonitor struct {
	kinds []mvc.ErrorKind
}

func (m *recordingMonitor) Report(_ context.Context, kind mvc.ErrorKind, _ string, _ error) {
	m.kinds = append(m.kinds, kind)
}

func TestDispatchListenerAttach(t *testing.T) {
	bus := mvc.NewManager()
	mon := &recordingMonitor{}

	reg := new(MockRegistry)
	reg.On("Has", "home").Return(true)
	reg.On("Get", mock.Anything, "home").Return(&stubHandler{err: errors.New("x")}, nil)

	d := mvc.NewDispatchListener(reg).WithMonitor(mon)
	d.Attach(bus)
	require.Len(t, bus.Listeners(mvc.EventDispatch), 1)
	require.Len(t, bus.Listeners(mvc.EventDispatchError), 1)

	e := newDispatchEvent(bus, "home")
	require.NoError(t, e.Enter(mvc.EventDispatch))
	_, err := bus.Trigger(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []mvc.ErrorKind{mvc.ErrorException}, mon.kinds)

	d.Detach(bus)
	assert.Empty(t, bus.Listeners(mvc.EventDispatch))
	assert.Empty(t, bus.Listeners(mvc.EventDispatchError))
}
