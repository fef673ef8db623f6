// Package localstore is the device-local key/value store. It plays the part
// browser local storage plays for the web client: opaque string values under
// a handful of fixed keys.
package localstore

import (
	"context"
	"sync"
)

// Keys of the local key space.
const (
	KeyCredential    = "GEMINI_API_KEY"
	KeyStandups      = "standup_history_local_v1"
	KeyTickets       = "jira_tickets_local_v1"
	KeyBackendConfig = "supabase_settings"
)

// KV is a string key/value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is a process-local KV, used for ephemeral runs and tests.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
