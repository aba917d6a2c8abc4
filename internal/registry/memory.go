package registry

import (
	"context"
	"sync"
)

// Memory is an in-process Registry guarded by a mutex.
type Memory struct {
	mu      sync.Mutex
	visited map[string]struct{}
	claimed map[string]struct{}
}

var _ Registry = (*Memory)(nil)

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{
		visited: make(map[string]struct{}),
		claimed: make(map[string]struct{}),
	}
}

// Claim implements Registry.
func (m *Memory) Claim(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.visited[url]; ok {
		return false, nil
	}
	if _, ok := m.claimed[url]; ok {
		return false, nil
	}
	m.claimed[url] = struct{}{}
	return true, nil
}

// Commit implements Registry.
func (m *Memory) Commit(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.claimed, url)
	m.visited[url] = struct{}{}
	return nil
}

// Release implements Registry.
func (m *Memory) Release(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.claimed, url)
	return nil
}

// Visited implements Registry.
func (m *Memory) Visited(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.visited[url]
	return ok, nil
}

// Len implements Registry.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.visited), nil
}

// Close implements Registry.
func (m *Memory) Close() error {
	return nil
}
