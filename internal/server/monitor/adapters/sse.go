package adapters

import (
	"strconv"

	"github.com/agentstation/waypoint/internal/server/monitor"
	"github.com/agentstation/waypoint/internal/server/sse"
)

// SSESubscriber forwards monitor events to the SSE broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates an SSESubscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send implements monitor.Subscriber.
func (s *SSESubscriber) Send(event monitor.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    strconv.FormatInt(event.Timestamp.UnixNano(), 10),
		Data:  event.Data,
	})
	return nil
}

// Close does nothing; the broadcaster owns its clients.
func (s *SSESubscriber) Close() error {
	return nil
}
