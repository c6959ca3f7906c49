// Package adapters connects the monitor broker to its transports.
package adapters

import (
	"github.com/agentstation/waypoint/internal/server/monitor"
	ws "github.com/agentstation/waypoint/internal/server/websocket"
)

// WebSocketSubscriber forwards monitor events to the WebSocket hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a WebSocketSubscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send implements monitor.Subscriber.
func (s *WebSocketSubscriber) Send(event monitor.Event) error {
	s.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close does nothing; the hub owns its clients.
func (s *WebSocketSubscriber) Close() error {
	return nil
}
