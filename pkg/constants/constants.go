// Package constants provides shared constants used throughout the waypoint codebase.
// This includes listener priorities, timeouts, file permissions and default
// template names that must agree across packages.
package constants

import "time"

// Listener priorities. Higher values run first; the built-in listeners sit
// at the far ends so application listeners can slot in between.
const (
	// PriorityHTTPMethod runs before routing to reject disallowed methods
	PriorityHTTPMethod = 10000

	// PriorityPageCache runs right after the method check on the route event
	PriorityPageCache = 5000

	// PriorityRoute is the router's slot on the route event
	PriorityRoute = 1

	// PriorityDispatch is the handler invocation slot on the dispatch event
	PriorityDispatch = 1

	// PriorityErrorStrategy is where status/model strategies attach to error events
	PriorityErrorStrategy = 1

	// PriorityCreateViewModel wraps handler results into view models
	PriorityCreateViewModel = -80

	// PriorityInjectTemplate names templates for models that have none
	PriorityInjectTemplate = -90

	// PriorityInjectViewModel places the result model into the layout
	PriorityInjectViewModel = -100

	// PriorityMonitor reports dispatch errors after every strategy has run
	PriorityMonitor = -1000

	// PriorityRender is the default rendering strategy
	PriorityRender = -10000

	// PrioritySend is the finish listener that runs the send chain
	PrioritySend = -10000
)

// Send chain priorities. Stream responses must be checked first because a
// stream response is also an HTTP response on the wire.
const (
	PriorityStreamSender  = -1000
	PriorityHTTPSender    = -2000
	PriorityConsoleSender = -3000
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultReadTimeout bounds reading a request
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds writing a response
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout bounds keep-alive connections
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 15 * time.Second

	// WebSocketWriteWait is the time allowed to write a message to the peer
	WebSocketWriteWait = 10 * time.Second

	// WebSocketPongWait is the time allowed to read the next pong
	WebSocketPongWait = 60 * time.Second

	// WebSocketPingPeriod must be less than WebSocketPongWait
	WebSocketPingPeriod = (WebSocketPongWait * 9) / 10

	// SSEHeartbeat is the interval between SSE keep-alive comments
	SSEHeartbeat = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// LogFilePermissions is the permission for log files (rw-r--r--)
	LogFilePermissions = 0644
)

// Limits
const (
	// WebSocketMaxMessageSize caps inbound monitor messages
	WebSocketMaxMessageSize = 512

	// MonitorBufferSize is the per-subscriber event buffer
	MonitorBufferSize = 256

	// DefaultCacheTTL is how long the page cache keeps a rendered response
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCleanup is the page cache janitor interval
	DefaultCacheCleanup = 10 * time.Minute
)

// Default template names used by the view manager.
const (
	DefaultLayoutTemplate    = "layout/layout"
	DefaultErrorTemplate     = "error"
	DefaultNotFoundTemplate  = "error/404"
	DefaultNotFoundHandler   = "not-found"
	DefaultAction            = "index"
	DefaultContentCapture    = "content"
	DefaultHandlerParamName  = "handler"
	FallbackHandlerParamName = "controller"
	DefaultActionParamName   = "action"
)
