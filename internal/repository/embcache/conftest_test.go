package embcache

import (
	"context"
	"sync"

	"github.com/kailas-cloud/enrichd/internal/db"
	"github.com/kailas-cloud/enrichd/internal/domain"
)

// mockStore is an in-memory key-value store.
type mockStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// mockEmbedder counts calls and returns fixed vectors per text.
type mockEmbedder struct {
	vectors    map[string][]float32
	err        error
	calls      int
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text], TotalTokens: 5}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = m.vectors[t]
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * len(texts)}, nil
}
