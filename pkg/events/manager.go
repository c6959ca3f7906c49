package events

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Wildcard is the event name whose listeners receive every event.
const Wildcard = "*"

// Listener handles one event and may return a result.
type Listener[E Event] func(ctx context.Context, e E) (any, error)

// Handle identifies an attached listener so it can be detached later.
type Handle struct {
	ID       string
	Event    string
	Priority int
	seq      uint64
}

type entry[E Event] struct {
	handle *Handle
	fn     Listener[E]
}

// Manager keeps listeners per event name and triggers them in priority order.
// It is safe for concurrent use; listeners attached during a trigger take
// effect on the next trigger.
type Manager[E Event] struct {
	mu        sync.RWMutex
	listeners map[string][]entry[E]
	seq       uint64
}

// NewManager creates an empty Manager.
func NewManager[E Event]() *Manager[E] {
	return &Manager[E]{listeners: make(map[string][]entry[E])}
}

// Attach registers fn for the named event at the given priority.
func (m *Manager[E]) Attach(name string, fn Listener[E], priority int) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	h := &Handle{
		ID:       uuid.NewString(),
		Event:    name,
		Priority: priority,
		seq:      m.seq,
	}
	m.listeners[name] = append(m.listeners[name], entry[E]{handle: h, fn: fn})
	return h
}

// Detach removes a previously attached listener. It reports whether the
// listener was found.
func (m *Manager[E]) Detach(h *Handle) bool {
	if h == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.listeners[h.Event]
	for i, e := range list {
		if e.handle.ID == h.ID {
			m.listeners[h.Event] = slices.Delete(list, i, i+1)
			if len(m.listeners[h.Event]) == 0 {
				delete(m.listeners, h.Event)
			}
			return true
		}
	}
	return false
}

// ClearListeners removes every listener of the named event.
func (m *Manager[E]) ClearListeners(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, name)
}

// Listeners returns the handles that a trigger of name would run, in order.
func (m *Manager[E]) Listeners(name string) []*Handle {
	ordered := m.ordered(name)
	handles := make([]*Handle, len(ordered))
	for i, e := range ordered {
		handles[i] = e.handle
	}
	return handles
}

// Trigger runs every listener of e.Name() until one stops propagation or
// returns an error.
func (m *Manager[E]) Trigger(ctx context.Context, e E) (*ResponseCollection, error) {
	return m.TriggerUntil(ctx, e, nil)
}

// TriggerUntil behaves like Trigger and additionally stops as soon as until
// accepts a listener result. The stop flag is cleared before the first
// listener runs, so one event can be triggered again under a new name.
func (m *Manager[E]) TriggerUntil(ctx context.Context, e E, until func(any) bool) (*ResponseCollection, error) {
	e.StopPropagation(false)
	results := &ResponseCollection{}

	for _, l := range m.ordered(e.Name()) {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := l.fn(ctx, e)
		if err != nil {
			return results, err
		}
		results.push(res)

		if e.PropagationIsStopped() {
			results.stopped = true
			break
		}
		if until != nil && until(res) {
			results.stopped = true
			break
		}
	}
	return results, nil
}

// ordered snapshots the listeners of name plus wildcard listeners, sorted by
// descending priority then registration order.
func (m *Manager[E]) ordered(name string) []entry[E] {
	m.mu.RLock()
	list := slices.Clone(m.listeners[name])
	if name != Wildcard {
		list = append(list, m.listeners[Wildcard]...)
	}
	m.mu.RUnlock()

	slices.SortStableFunc(list, func(a, b entry[E]) int {
		if c := cmp.Compare(b.handle.Priority, a.handle.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.handle.seq, b.handle.seq)
	})
	return list
}
