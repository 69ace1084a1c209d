package pipeline

import (
	"context"
	"sync"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

// mockStamper applies the user_id tag like the real stamping service.
type mockStamper struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockStamper) Stamp(docs []domain.Document, userID string) ([]domain.Document, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	stamped := make([]domain.Document, len(docs))
	for i := range docs {
		stamped[i] = docs[i].WithTag(domain.KeyUserID, userID)
	}
	return stamped, nil
}

// mockBatchEmbedder returns fixed-size vectors, one per text.
type mockBatchEmbedder struct {
	mu      sync.Mutex
	err     error
	short   bool // return one vector fewer than requested
	calls   int
	lastLen int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastLen = len(texts)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = []float32{float32(i), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * len(texts)}, nil
}

// mockAssigner labels everything "general" and attaches the vector.
type mockAssigner struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockAssigner) Assign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	labeled := make([]domain.Document, len(docs))
	for i := range docs {
		labeled[i] = docs[i].WithTopic("general", 0.9)
		labeled[i] = labeled[i].WithVector(vectors[i])
	}
	return labeled, nil
}

// mockSession records committed batches.
type mockSession struct {
	mu        sync.Mutex
	commitErr error
	committed [][]domain.Document
	closes    int
}

func (m *mockSession) Commit(_ context.Context, docs []domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	batch := make([]domain.Document, len(docs))
	copy(batch, docs)
	m.committed = append(m.committed, batch)
	return nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

// mockSinkFactory hands out the same session and counts acquires.
type mockSinkFactory struct {
	mu         sync.Mutex
	session    *mockSession
	acquireErr error
	acquires   int
}

func (m *mockSinkFactory) Acquire(_ context.Context) (SinkSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	return m.session, nil
}
