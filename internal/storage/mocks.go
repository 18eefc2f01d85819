package storage

import (
	"context"
	"sync"
)

// MockObjectStore is a func-field test double. Unset funcs behave like an
// empty container. Calls are counted so tests can assert that no store call
// was made.
type MockObjectStore struct {
	ListFunc   func(ctx context.Context) ([]ObjectInfo, error)
	ExistsFunc func(ctx context.Context, name string) (bool, error)
	DeleteFunc func(ctx context.Context, name string) error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockObjectStore) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times op ("List", "Exists", "Delete") was invoked.
func (m *MockObjectStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls is the number of store calls of any kind.
func (m *MockObjectStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MockObjectStore) List(ctx context.Context) ([]ObjectInfo, error) {
	m.record("List")
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockObjectStore) Exists(ctx context.Context, name string) (bool, error) {
	m.record("Exists")
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, name)
	}
	return false, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, name string) error {
	m.record("Delete")
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name)
	}
	return ErrNotFound
}
