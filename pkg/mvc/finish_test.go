package mvc_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/waypoint/pkg/message"
	"github.com/agentstation/waypoint/pkg/mvc"
	"github.com/agentstation/waypoint/pkg/sender"
)

func TestSendResponseListenerHTTP(t *testing.T) {
	bus := mvc.NewManager()
	l := mvc.NewSendResponseListener(sender.NewChain(nil))
	l.Attach(bus)

	rec := httptest.NewRecorder()
	e := newDispatchEvent(bus, "")
	e.SetResponseWriter(rec)
	e.Response().SetStatusCode(http.StatusCreated)
	e.Response().SetContent("created")
	require.NoError(t, e.Enter(mvc.EventFinish))

	_, err := e.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.True(t, e.Response().SendState().ContentSent())

	// A second finish must not write again.
	_, err = e.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "created", rec.Body.String())
}

func TestSendResponseListenerConsole(t *testing.T) {
	var out bytes.Buffer
	bus := mvc.NewManager()
	mvc.NewSendResponseListener(sender.NewChain(&out)).Attach(bus)

	resp := message.NewConsoleResponse()
	resp.SetContent("hello\n")
	e := mvc.NewEvent(bus, message.NewConsoleRequest([]string{"/"}), resp)
	require.NoError(t, e.Enter(mvc.EventFinish))

	_, err := e.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestSendResponseListenerWithoutResponse(t *testing.T) {
	l := mvc.NewSendResponseListener(sender.NewChain(nil))
	assert.NotNil(t, l.Chain())

	e := mvc.NewEvent(mvc.NewManager(), nil, nil)
	ret, err := l.SendResponse(context.Background(), e)
	require.NoError(t, err)
	assert.Nil(t, ret)
}
