package welcome_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/internal/welcome"
)

func get(t *testing.T, target string) *http.Response {
	t.Helper()
	app, err := waypoint.New(welcome.Options()...)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Result()
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestResolver(t *testing.T) {
	for _, name := range []string{"layout/layout", "layout/minimal", "home/index", "home/about", "greeter/index", "error", "error/404"} {
		_, err := welcome.Resolver().Resolve(name)
		assert.NoError(t, err, name)
	}
}

func TestHome(t *testing.T) {
	resp := get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	html := body(t, resp)
	assert.Contains(t, html, "<title>waypoint</title>")
	assert.Contains(t, html, "<h1>Welcome to waypoint</h1>")
	assert.Contains(t, html, "<code>/greet/:name</code>")
}

func TestAboutUsesMinimalLayout(t *testing.T) {
	resp := get(t, "/home/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	html := body(t, resp)
	assert.Contains(t, html, "<h1>About</h1>")
	assert.NotContains(t, html, "<title>")
}

func TestGreeter(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"plain", "/greet/ada", "<h1>Hello, ada</h1>"},
		{"shout", "/greet/ada?shout=1", "<h1>HELLO, ADA!</h1>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, tt.target)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body(t, resp), tt.want)
		})
	}
}

func TestUnknownAction(t *testing.T) {
	resp := get(t, "/home/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "A 404 error occurred")
}

func TestNoRoute(t *testing.T) {
	resp := get(t, "/nowhere/at/all")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "error-router-no-match")
}

func TestRobotsIsStreamed(t *testing.T) {
	resp := get(t, "/robots.txt")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body(t, resp), "Disallow: /_monitor/")
}
