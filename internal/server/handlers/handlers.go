// Package handlers implements the server's own endpoints.
package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint"
	"github.com/agentstation/waypoint/internal/server/cache"
	"github.com/agentstation/waypoint/internal/server/monitor"
	"github.com/agentstation/waypoint/internal/server/response"
	"github.com/agentstation/waypoint/internal/server/sse"
	ws "github.com/agentstation/waypoint/internal/server/websocket"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app            waypoint.Application
	cache          *cache.PageCache
	broker         *monitor.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       *websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a Handlers instance. app and pageCache may be nil.
func New(
	app waypoint.Application,
	pageCache *cache.PageCache,
	broker *monitor.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader *websocket.Upgrader,
	logger *zerolog.Logger,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		app:            app,
		cache:          pageCache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      startTime,
	}
}

// App returns the handler for every path the server does not own. Without
// a mounted application it answers 503.
func (h *Handlers) App() http.Handler {
	if h.app == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			response.ServiceUnavailable(w, "No application mounted")
		})
	}
	return h.app
}
