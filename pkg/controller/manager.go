// Package controller provides the handler registry used by dispatch and the
// action controller most handlers are built on.
package controller

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/waypoint/pkg/errors"
	"github.com/agentstation/waypoint/pkg/logging"
	"github.com/agentstation/waypoint/pkg/mvc"
)

// Factory builds a handler instance. It may return any value; the manager
// rejects values that do not implement mvc.Handler.
type Factory func(ctx context.Context) (any, error)

// Initializer runs against every instance the manager builds, after the
// factory and before the instance is returned.
type Initializer func(name string, instance any)

// EventManagerAware instances receive the application event manager.
type EventManagerAware interface {
	SetEventManager(bus *mvc.Manager)
}

// PluginManagerAware instances receive the plugin manager.
type PluginManagerAware interface {
	SetPluginManager(plugins *PluginManager)
}

type registration struct {
	factory Factory
	shared  bool
}

// Manager locates handlers by name. Unless registered as shared, every Get
// builds a new instance, so per-request state never leaks between requests.
type Manager struct {
	mu           sync.RWMutex
	entries      map[string]registration
	aliases      map[string]string
	instances    map[string]mvc.Handler
	initializers []Initializer
}

var _ mvc.HandlerRegistry = (*Manager)(nil)

// NewManager creates a manager whose instances get bus and plugins injected.
// Either may be nil.
func NewManager(bus *mvc.Manager, plugins *PluginManager) *Manager {
	m := &Manager{
		entries:   make(map[string]registration),
		aliases:   make(map[string]string),
		instances: make(map[string]mvc.Handler),
	}
	m.AddInitializer(func(_ string, instance any) {
		if aware, ok := instance.(EventManagerAware); ok && bus != nil {
			aware.SetEventManager(bus)
		}
	})
	m.AddInitializer(func(_ string, instance any) {
		if aware, ok := instance.(PluginManagerAware); ok && plugins != nil {
			aware.SetPluginManager(plugins)
		}
	})
	return m
}

// Register adds a factory that builds a fresh instance per Get.
func (m *Manager) Register(name string, factory Factory) {
	m.register(name, factory, false)
}

// RegisterShared adds a factory whose first instance is reused.
func (m *Manager) RegisterShared(name string, factory Factory) {
	m.register(name, factory, true)
}

// RegisterHandler adds a fixed handler shared by every request.
func (m *Manager) RegisterHandler(name string, h mvc.Handler) {
	m.register(name, func(context.Context) (any, error) { return h, nil }, true)
}

func (m *Manager) register(name string, factory Factory, shared bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = registration{factory: factory, shared: shared}
	delete(m.instances, name)
}

// Alias makes alias resolve to target.
func (m *Manager) Alias(alias, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[alias] = target
}

// AddInitializer appends an initializer. Initializers run in order.
func (m *Manager) AddInitializer(fn Initializer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initializers = append(m.initializers, fn)
}

// Has reports whether name or an alias of it is registered.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[m.resolve(name)]
	return ok
}

// Names returns the registered names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get builds (or reuses, for shared entries) the handler registered as name.
func (m *Manager) Get(ctx context.Context, name string) (mvc.Handler, error) {
	m.mu.RLock()
	key := m.resolve(name)
	reg, ok := m.entries[key]
	cached := m.instances[key]
	inits := slices.Clone(m.initializers)
	m.mu.RUnlock()

	if !ok {
		return nil, errors.NewNotFoundError("handler", name)
	}
	if cached != nil {
		return cached, nil
	}

	instance, err := reg.factory(ctx)
	if err != nil {
		return nil, errors.NewHandlerError(name, err)
	}
	h, ok := instance.(mvc.Handler)
	if !ok {
		invalid := errors.NewInvalidServiceError(name, instance, "mvc.Handler")
		logging.FromContext(ctx).Warn().
			Str("handler", name).
			Str("type", invalid.Type).
			Msg("Registered handler is not dispatchable")
		return nil, invalid
	}
	for _, fn := range inits {
		fn(name, instance)
	}

	if reg.shared {
		m.mu.Lock()
		if existing := m.instances[key]; existing != nil {
			h = existing
		} else {
			m.instances[key] = h
		}
		m.mu.Unlock()
	}
	return h, nil
}

func (m *Manager) resolve(name string) string {
	if target, ok := m.aliases[name]; ok {
		return target
	}
	return name
}
