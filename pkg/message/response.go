package message

import (
	"io"
	"net/http"
)

// Response is the outbound side of a dispatch.
type Response interface {
	StatusCode() int
	SetStatusCode(code int)
	Header() http.Header
	Content() string
	SetContent(content string)
	SendState() *SendState
}

// SendState records what has been transmitted for one response instance.
type SendState struct {
	headersSent bool
	contentSent bool
}

// HeadersSent reports whether headers were sent.
func (s *SendState) HeadersSent() bool { return s.headersSent }

// MarkHeadersSent records that headers were sent.
func (s *SendState) MarkHeadersSent() { s.headersSent = true }

// ContentSent reports whether the body was sent.
func (s *SendState) ContentSent() bool { return s.contentSent }

// MarkContentSent records that the body was sent.
func (s *SendState) MarkContentSent() { s.contentSent = true }

// HTTPResponse is a buffered HTTP response.
type HTTPResponse struct {
	status  int
	header  http.Header
	content string
	state   SendState
}

// NewHTTPResponse creates a 200 response with no body.
func NewHTTPResponse() *HTTPResponse {
	return &HTTPResponse{status: http.StatusOK, header: http.Header{}}
}

// StatusCode returns the status code.
func (r *HTTPResponse) StatusCode() int { return r.status }

// SetStatusCode sets the status code.
func (r *HTTPResponse) SetStatusCode(code int) { r.status = code }

// Header returns the response headers.
func (r *HTTPResponse) Header() http.Header {
	if r.header == nil {
		r.header = http.Header{}
	}
	return r.header
}

// Content returns the body.
func (r *HTTPResponse) Content() string { return r.content }

// SetContent replaces the body.
func (r *HTTPResponse) SetContent(content string) { r.content = content }

// SendState returns the instance's send flags.
func (r *HTTPResponse) SendState() *SendState { return &r.state }

// StreamResponse is an HTTP response whose body is copied from a reader.
type StreamResponse struct {
	HTTPResponse
	stream io.Reader
}

// NewStreamResponse creates a 200 response streaming from r.
func NewStreamResponse(r io.Reader) *StreamResponse {
	return &StreamResponse{HTTPResponse: *NewHTTPResponse(), stream: r}
}

// Stream returns the body reader.
func (r *StreamResponse) Stream() io.Reader { return r.stream }

// SetStream replaces the body reader.
func (r *StreamResponse) SetStream(s io.Reader) { r.stream = s }

// ConsoleResponse is written to a terminal. Its error level is derived from
// the status code unless set explicitly.
type ConsoleResponse struct {
	HTTPResponse
	errorLevel *int
}

// NewConsoleResponse creates an empty console response.
func NewConsoleResponse() *ConsoleResponse {
	return &ConsoleResponse{HTTPResponse: *NewHTTPResponse()}
}

// ErrorLevel returns the process exit code for this response.
func (r *ConsoleResponse) ErrorLevel() int {
	if r.errorLevel != nil {
		return *r.errorLevel
	}
	if r.status >= http.StatusBadRequest {
		return 1
	}
	return 0
}

// SetErrorLevel overrides the exit code.
func (r *ConsoleResponse) SetErrorLevel(level int) { r.errorLevel = &level }
