package sink

import (
	"context"
	"sync"

	"github.com/kailas-cloud/enrichd/internal/db"
)

// mockStore records index and hash operations in memory.
type mockStore struct {
	mu sync.Mutex

	indexes map[string]*db.IndexDefinition
	hashes  map[string]map[string]string

	existsErr    error
	createErr    error
	hsetMultiErr error
	delErr       error

	createCalls int
	delCalls    []string
}

func newMockStore() *mockStore {
	return &mockStore{
		indexes: make(map[string]*db.IndexDefinition),
		hashes:  make(map[string]map[string]string),
	}
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.indexes[name]
	return ok, nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.indexes[def.Name] = def
	return nil
}

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hsetMultiErr != nil {
		return m.hsetMultiErr
	}
	for _, item := range items {
		m.hashes[item.Key] = item.Fields
	}
	return nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delCalls = append(m.delCalls, key)
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.hashes, key)
	return nil
}
