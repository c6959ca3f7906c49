package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/pkg/constants"
)

// Broker distributes monitor events to every subscriber.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}

	events     chan Event
	register   chan Subscriber
	unregister chan Subscriber
	logger     *zerolog.Logger
}

// NewBroker creates a broker. Nothing is delivered until Run is started.
func NewBroker(logger *zerolog.Logger) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broker{
		subscribers: make(map[Subscriber]struct{}),
		events:      make(chan Event, constants.MonitorBufferSize),
		register:    make(chan Subscriber, 8),
		unregister:  make(chan Subscriber, 8),
		logger:      logger,
	}
}

// Run delivers events until ctx is canceled, then closes every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = make(map[Subscriber]struct{})
			b.mu.Unlock()
			b.logger.Info().Msg("Monitor broker stopped")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers[sub] = struct{}{}
			n := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("subscribers", n).Msg("Monitor subscriber added")

		case sub := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.subscribers[sub]; ok {
				delete(b.subscribers, sub)
				_ = sub.Close()
			}
			n := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("subscribers", n).Msg("Monitor subscriber removed")

		case event := <-b.events:
			b.fanOut(event)
		}
	}
}

func (b *Broker) fanOut(event Event) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s Subscriber) {
			defer wg.Done()
			if err := s.Send(event); err != nil {
				b.logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Monitor delivery failed")
			}
		}(sub)
	}
	wg.Wait()
}

// Publish queues an event. When the queue is full the event is dropped
// rather than stalling the request that produced it.
func (b *Broker) Publish(eventType EventType, data any) {
	event := Event{Type: eventType, Timestamp: time.Now(), Data: data}
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Str("event_type", string(eventType)).Msg("Monitor queue full, event dropped")
	}
}

// Subscribe adds sub once Run picks it up.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes sub.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
