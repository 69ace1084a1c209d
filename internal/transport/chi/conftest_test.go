package chi

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/domain"
	healthuc "github.com/kailas-cloud/enrichd/internal/usecase/health"
	pipelineuc "github.com/kailas-cloud/enrichd/internal/usecase/pipeline"
)

type stubStamper struct{ err error }

func (s *stubStamper) Stamp(docs []domain.Document, userID string) ([]domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Document, len(docs))
	for i := range docs {
		out[i] = docs[i].WithTag(domain.KeyUserID, userID)
	}
	return out, nil
}

type stubEmbedder struct{ err error }

func (s *stubEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range embeddings {
		embeddings[i] = []float32{1, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

type stubAssigner struct{}

func (s *stubAssigner) Assign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error) {
	out := make([]domain.Document, len(docs))
	for i := range docs {
		out[i] = docs[i].WithTopic("general", 0.9)
		out[i] = out[i].WithVector(vectors[i])
	}
	return out, nil
}

type stubSession struct {
	commitErr error
	committed []domain.Document
}

func (s *stubSession) Commit(_ context.Context, docs []domain.Document) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = append(s.committed, docs...)
	return nil
}

func (s *stubSession) Close() error { return nil }

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

// serverFixture wires a Server over a real pipeline service with stub edges.
type serverFixture struct {
	server   *Server
	session  *stubSession
	embedder *stubEmbedder
	pinger   *stubPinger
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	f := &serverFixture{
		session:  &stubSession{},
		embedder: &stubEmbedder{},
		pinger:   &stubPinger{},
	}
	sinks := pipelineuc.SinkFactoryFunc(func(_ context.Context) (pipelineuc.SinkSession, error) {
		return f.session, nil
	})
	pipe := pipelineuc.New(&stubStamper{}, f.embedder, &stubAssigner{}, sinks, 100)
	health := healthuc.New(f.pinger, nil, nil)
	f.server = NewServer(pipe, health, zap.NewNop())
	return f
}
