package mvc_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/view"
)

// scriptedRenderer fails for templates listed in failing and otherwise
// renders "<template>".
type scriptedRenderer struct {
	failing map[string]bool
	calls   []string
}

func (r *scriptedRenderer) Name() string        { return "scripted" }
func (r *scriptedRenderer) ContentType() string { return "text/plain" }

func (r *scriptedRenderer) Render(_ context.Context, m *view.Model) (string, error) {
	target := m
	for target.HasChildren() {
		target = target.Children()[0]
	}
	r.calls = append(r.calls, target.Template())
	if r.failing[target.Template()] {
		return "", pkgerrors.NewRenderError(r.Name(), target.Template(), errors.New("cannot render"))
	}
	return "<" + target.Template() + ">", nil
}

func newRenderEvent(bus *mvc.Manager, template string) *mvc.Event {
	e := newDispatchEvent(bus, "")
	layout := view.NewModel(nil)
	layout.SetTemplate("layout/layout")
	child := view.NewModel(nil)
	child.SetTemplate(template)
	layout.AddChild(child, "")
	e.SetViewModel(layout)
	e.SetResult(child)
	return e
}

func renderPipeline(r view.Renderer) (*mvc.Manager, *mvc.RenderingStrategy) {
	bus := mvc.NewManager()
	strategy := mvc.NewRenderingStrategy(view.New(r))
	strategy.Attach(bus)
	mvc.NewExceptionStrategy().Attach(bus)
	mvc.InjectViewModelListener{}.Attach(bus)
	return bus, strategy
}

func TestRenderSuccess(t *testing.T) {
	r := &scriptedRenderer{}
	bus, _ := renderPipeline(r)
	e := newRenderEvent(bus, "home/index")
	require.NoError(t, e.Enter(mvc.EventRender))

	results, err := bus.Trigger(context.Background(), e)
	require.NoError(t, err)
	assert.Same(t, e.Response(), results.Last())
	assert.Equal(t, "<home/index>", e.Response().Content())
	assert.Equal(t, []string{"home/index"}, r.calls)
}

func TestRenderRetriesOnceThroughRenderError(t *testing.T) {
	r := &scriptedRenderer{failing: map[string]bool{"home/index": true}}
	bus, _ := renderPipeline(r)
	var renderErrors int
	bus.Attach(mvc.EventRenderError, func(context.Context, *mvc.Event) (any, error) {
		renderErrors++
		return nil, nil
	}, 100)

	e := newRenderEvent(bus, "home/index")
	require.NoError(t, e.Enter(mvc.EventRender))

	_, err := bus.Trigger(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, 1, renderErrors)
	assert.Equal(t, []string{"home/index", "error"}, r.calls)
	assert.Equal(t, "<error>", e.Response().Content())
	assert.Equal(t, http.StatusInternalServerError, e.Response().StatusCode())
	assert.Equal(t, mvc.ErrorException, e.Error())
	assert.True(t, pkgerrors.IsRenderError(e.Cause()))
	assert.Equal(t, mvc.PhaseRenderErroring, e.Phase())
}

func TestRenderSecondFailurePropagates(t *testing.T) {
	r := &scriptedRenderer{failing: map[string]bool{"home/index": true, "error": true}}
	bus, _ := renderPipeline(r)
	var renderErrors int
	bus.Attach(mvc.EventRenderError, func(context.Context, *mvc.Event) (any, error) {
		renderErrors++
		return nil, nil
	}, 100)

	e := newRenderEvent(bus, "home/index")
	require.NoError(t, e.Enter(mvc.EventRender))

	_, err := bus.Trigger(context.Background(), e)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRenderError(err))
	assert.Equal(t, 1, renderErrors, "render.error is entered exactly once")
	assert.Equal(t, []string{"home/index", "error"}, r.calls)
}

func TestRenderReturnsResponseResults(t *testing.T) {
	r := &scriptedRenderer{}
	_, strategy := renderPipeline(r)

	e := newRenderEvent(mvc.NewManager(), "home/index")
	resp := message.NewHTTPResponse()
	e.SetResult(resp)

	ret, err := strategy.Render(context.Background(), e)
	require.NoError(t, err)
	assert.Same(t, resp, ret)
	assert.Empty(t, r.calls)
}

func TestRenderWithoutViewModelDoesNothing(t *testing.T) {
	r := &scriptedRenderer{}
	_, strategy := renderPipeline(r)

	e := newDispatchEvent(mvc.NewManager(), "")
	ret, err := strategy.Render(context.Background(), e)
	require.NoError(t, err)
	assert.Nil(t, ret)
	assert.Empty(t, r.calls)
}

func TestRenderPrefersEventView(t *testing.T) {
	fallback := &scriptedRenderer{}
	override := &scriptedRenderer{}
	_, strategy := renderPipeline(fallback)

	e := newRenderEvent(mvc.NewManager(), "home/index")
	e.SetView(view.New(override))

	_, err := strategy.Render(context.Background(), e)
	require.NoError(t, err)
	assert.Empty(t, fallback.calls)
	assert.Len(t, override.calls, 1)
}

func TestRenderingStrategyAttachDetach(t *testing.T) {
	bus := mvc.NewManager()
	strategy := mvc.NewRenderingStrategy(view.New(&scriptedRenderer{}))
	assert.Equal(t, "layout/layout", strategy.LayoutTemplate())

	strategy.Attach(bus)
	for _, name := range []string{mvc.EventRender, mvc.EventRenderError} {
		handles := bus.Listeners(name)
		require.Len(t, handles, 1)
		assert.Equal(t, -10000, handles[0].Priority)
	}
	strategy.Detach(bus)
	assert.Empty(t, bus.Listeners(mvc.EventRender))
}
