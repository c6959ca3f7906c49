package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/waypoint/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "waypoint",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /ready. The server is ready once an application
// is mounted and bootstrapped.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.app == nil {
		response.ServiceUnavailable(w, "No application mounted")
		return
	}
	if err := h.app.Bootstrap(); err != nil {
		h.logger.Error().Err(err).Msg("Application bootstrap failed")
		response.ServiceUnavailable(w, "Application failed to bootstrap")
		return
	}

	data := map[string]any{
		"status":            "ready",
		"routes":            len(h.app.Router().Routes()),
		"monitor_listeners": h.broker.SubscriberCount(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	}
	if h.cache != nil {
		data["cache"] = map[string]any{"items": h.cache.ItemCount()}
	}
	response.OK(w, data)
}

// HandleCachePurge handles DELETE /_monitor/cache.
func (h *Handlers) HandleCachePurge(w http.ResponseWriter, _ *http.Request) {
	if h.cache == nil {
		response.NotFound(w, "Page cache is disabled")
		return
	}
	purged := h.cache.ItemCount()
	h.cache.Clear()
	h.logger.Info().Int("purged", purged).Msg("Page cache purged")
	response.OK(w, map[string]any{"purged": purged})
}
