package mirror

// Package mirror provides best-effort durable storage adapters for the
// non-sensitive session mirror. Mirrors are advisory hints only: writes are
// last-writer-wins and callers tolerate every failure.

import (
	"sync"

	"github.com/workdesk/workdesk-go/internal/ports"
)

// Memory is an in-process MirrorStore. The durable scope survives only as
// long as the process; it exists so tests and ephemeral runs can exercise the
// scope split without touching disk.
type Memory struct {
	mu      sync.Mutex
	session map[string]string
	durable map[string]string
}

// NewMemory constructs an empty in-memory mirror.
func NewMemory() *Memory {
	return &Memory{
		session: make(map[string]string),
		durable: make(map[string]string),
	}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.session[key]; ok {
		return v, true
	}
	v, ok := m.durable[key]
	return v, ok
}

func (m *Memory) GetDurable(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.durable[key]
	return v, ok
}

func (m *Memory) Set(scope ports.MirrorScope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scope == ports.ScopeDurable {
		m.durable[key] = value
	} else {
		m.session[key] = value
	}
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.session, key)
	delete(m.durable, key)
	return nil
}
