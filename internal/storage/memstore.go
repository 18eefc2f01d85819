package storage

import (
	"context"
	"sort"
	"sync"
)

type memStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// MemStore is an in-memory ObjectStore for local runs and tests. Put is
// exposed so objects can be seeded; uploads through a SAS URL never reach it.
type MemStore interface {
	ObjectStore
	Put(ctx context.Context, name string, data []byte) error
}

func NewMemStore() MemStore {
	return &memStore{
		objects: make(map[string][]byte),
	}
}

func (m *memStore) Put(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content := make([]byte, len(data))
	copy(content, data)
	m.objects[name] = content
	return nil
}

func (m *memStore) List(ctx context.Context) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]ObjectInfo, 0, len(m.objects))
	for name, content := range m.objects {
		results = append(results, ObjectInfo{Name: name, Size: int64(len(content))})
	}
	// Blob listings are lexicographic; keep the same order
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return results, nil
}

func (m *memStore) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.objects[name]
	return exists, nil
}

func (m *memStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.objects[name]; !exists {
		return ErrNotFound
	}

	delete(m.objects, name)
	return nil
}
