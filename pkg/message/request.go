package message

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is the inbound side of a dispatch.
type Request interface {
	Method() string
	Path() string
	Header() http.Header
	Query(name string) string
}

// HTTPRequest adapts *http.Request.
type HTTPRequest struct {
	raw *http.Request
}

// NewHTTPRequest wraps r.
func NewHTTPRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{raw: r}
}

// Raw returns the wrapped request.
func (r *HTTPRequest) Raw() *http.Request { return r.raw }

// Method returns the HTTP method.
func (r *HTTPRequest) Method() string { return r.raw.Method }

// Path returns the URL path.
func (r *HTTPRequest) Path() string { return r.raw.URL.Path }

// Header returns the request headers.
func (r *HTTPRequest) Header() http.Header { return r.raw.Header }

// Query returns the first value of a query parameter.
func (r *HTTPRequest) Query(name string) string { return r.raw.URL.Query().Get(name) }

// ConsoleRequest is a request issued from the command line. Arguments of the
// form --name=value become query parameters; the first remaining argument is
// the path.
type ConsoleRequest struct {
	args   []string
	path   string
	query  url.Values
	header http.Header
}

// NewConsoleRequest parses args into a ConsoleRequest.
func NewConsoleRequest(args []string) *ConsoleRequest {
	r := &ConsoleRequest{
		args:   append([]string(nil), args...),
		path:   "/",
		query:  url.Values{},
		header: http.Header{},
	}
	pathSet := false
	for _, arg := range args {
		if name, ok := strings.CutPrefix(arg, "--"); ok {
			key, value, _ := strings.Cut(name, "=")
			r.query.Add(key, value)
			continue
		}
		if !pathSet {
			r.path = "/" + strings.TrimPrefix(arg, "/")
			pathSet = true
		}
	}
	return r
}

// Args returns the raw arguments.
func (r *ConsoleRequest) Args() []string { return append([]string(nil), r.args...) }

// Method is empty for console requests.
func (r *ConsoleRequest) Method() string { return "" }

// Path returns the path argument, or "/".
func (r *ConsoleRequest) Path() string { return r.path }

// Header returns headers set by the caller (for example Accept).
func (r *ConsoleRequest) Header() http.Header { return r.header }

// Query returns the value of a --name=value argument.
func (r *ConsoleRequest) Query(name string) string { return r.query.Get(name) }
