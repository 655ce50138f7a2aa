package recent

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound means no list is stored under the key yet.
var ErrNotFound = errors.New("recent: not found")

// Store persists one id list per owner key.
type Store interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, ids []string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{lists: map[string][]string{}} }

func (m *MemoryStore) Get(_ context.Context, key string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.lists[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), ids...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([]string(nil), ids...)
	return nil
}
