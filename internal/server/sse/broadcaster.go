// Package sse streams monitor events to browsers as Server-Sent Events.
package sse

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/pkg/constants"
)

// Event is one SSE frame.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}

// Broadcaster tracks connected SSE clients and copies every broadcast
// event into each client's buffer.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}

	joining chan chan Event
	leaving chan chan Event
	events  chan Event

	heartbeat time.Duration
	logger    *zerolog.Logger
}

// NewBroadcaster creates a broadcaster. Clients may connect before Run
// starts; they are admitted once it does.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{
		clients:   make(map[chan Event]struct{}),
		joining:   make(chan chan Event, 16),
		leaving:   make(chan chan Event, 16),
		events:    make(chan Event, constants.MonitorBufferSize),
		heartbeat: constants.SSEHeartbeat,
		logger:    logger,
	}
}

// SetHeartbeat changes the keep-alive interval. Zero disables it.
func (b *Broadcaster) SetHeartbeat(d time.Duration) {
	b.heartbeat = d
}

// Run admits clients and delivers events until ctx is canceled.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				close(client)
			}
			b.clients = make(map[chan Event]struct{})
			b.mu.Unlock()
			b.logger.Info().Msg("SSE broadcaster stopped")
			return

		case client := <-b.joining:
			b.mu.Lock()
			b.clients[client] = struct{}{}
			n := len(b.clients)
			b.mu.Unlock()
			b.logger.Debug().Int("clients", n).Msg("SSE client connected")

		case client := <-b.leaving:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client)
			}
			n := len(b.clients)
			b.mu.Unlock()
			b.logger.Debug().Int("clients", n).Msg("SSE client disconnected")

		case event := <-b.events:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- event:
				default:
					b.logger.Warn().Str("event", event.Event).Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Broadcast queues event for every client.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Str("event", event.Event).Msg("SSE queue full, event dropped")
	}
}

// ClientCount returns the number of admitted clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := make(chan Event, constants.MonitorBufferSize)
	b.joining <- client
	defer func() { b.leaving <- client }()

	b.write(w, flusher, Event{
		Event: "connected",
		Data: map[string]any{
			"message":   "Connected to waypoint monitor stream",
			"timestamp": time.Now(),
		},
	})

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		ticker := time.NewTicker(b.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case event, open := <-client:
			if !open {
				return
			}
			b.write(w, flusher, event)
		case <-tick:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (b *Broadcaster) write(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event.Event).Msg("Failed to encode SSE event")
		return
	}
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
