package system

import (
	"context"
	"fmt"
	"sync"
)

// Manager starts registered services in registration order and stops them in
// reverse. A failed start stops the services already running before the
// error is returned.
type Manager struct {
	mu       sync.Mutex
	services []Service
	names    map[string]struct{}
	running  bool
}

// NewManager constructs an empty manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// Register adds a service. Names must be unique; registration after Start is
// rejected.
func (m *Manager) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("nil service")
	}
	name := svc.Name()
	if name == "" {
		return fmt.Errorf("service name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("cannot register %s: manager already started", name)
	}
	if _, dup := m.names[name]; dup {
		return fmt.Errorf("service %s already registered", name)
	}
	m.names[name] = struct{}{}
	m.services = append(m.services, svc)
	return nil
}

// Start brings every registered service up in order.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	for i, svc := range m.services {
		if err := svc.Start(ctx); err != nil {
			m.stopLocked(ctx, i-1)
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
	}
	m.running = true
	return nil
}

// Stop brings services down in reverse order. The first stop error is
// returned after every service has been asked to stop.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	return m.stopLocked(ctx, len(m.services)-1)
}

func (m *Manager) stopLocked(ctx context.Context, from int) error {
	var first error
	for i := from; i >= 0; i-- {
		if err := m.services[i].Stop(ctx); err != nil && first == nil {
			first = fmt.Errorf("stop %s: %w", m.services[i].Name(), err)
		}
	}
	return first
}

// NoopService satisfies Service for components without a lifecycle of their
// own but which should still appear in the startup ledger.
type NoopService struct {
	ServiceName string
}

// Name implements Service.
func (n NoopService) Name() string { return n.ServiceName }

// Start implements Service.
func (n NoopService) Start(context.Context) error { return nil }

// Stop implements Service.
func (n NoopService) Stop(context.Context) error { return nil }
