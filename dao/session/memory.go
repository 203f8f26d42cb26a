package session

import (
	"context"
	"sync"
)

type bucket map[string]map[string]string // scope -> key -> value

// Memory 进程内存实现
type Memory struct {
	mu   sync.RWMutex
	data map[string]bucket
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]bucket)}
}

func (m *Memory) Get(_ context.Context, sid, scope, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[sid][scope][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, sid, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(sid, scope, key, value)
	return nil
}

func (m *Memory) set(sid, scope, key, value string) {
	b, ok := m.data[sid]
	if !ok {
		b = make(bucket)
		m.data[sid] = b
	}
	if b[scope] == nil {
		b[scope] = make(map[string]string)
	}
	b[scope][key] = value
}

func (m *Memory) Remove(_ context.Context, sid, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[sid]; ok {
		delete(b[scope], key)
		m.prune(sid)
	}
	return nil
}

func (m *Memory) Clear(_ context.Context, sid, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.data[sid]; ok {
		delete(b, scope)
		m.prune(sid)
	}
	return nil
}

func (m *Memory) Clients(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sids := make([]string, 0, len(m.data))
	for sid := range m.data {
		sids = append(sids, sid)
	}
	return sids, nil
}

// prune 调用方持有写锁
func (m *Memory) prune(sid string) {
	b := m.data[sid]
	for scope, kv := range b {
		if len(kv) == 0 {
			delete(b, scope)
		}
	}
	if len(b) == 0 {
		delete(m.data, sid)
	}
}
