package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/waypoint/internal/server/monitor"
	"github.com/agentstation/waypoint/pkg/logging"
)

// HandleWebSocket handles GET /_monitor/ws.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.announce(r, "websocket")
	if err := h.wsHub.Serve(h.upgrader, w, r); err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
	}
}

// HandleSSE handles GET /_monitor/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.announce(r, "sse")
	h.sseBroadcaster.ServeHTTP(w, r)
}

func (h *Handlers) announce(r *http.Request, transport string) {
	h.broker.Publish(monitor.ClientConnected, map[string]any{
		"transport":   transport,
		"remote_addr": r.RemoteAddr,
		"request_id":  logging.RequestID(r.Context()),
		"timestamp":   time.Now(),
	})
}
