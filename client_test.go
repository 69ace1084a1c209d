package enrichd

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without database address")
	}
}

func TestOptions_Apply(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithRedis("localhost:6379", "secret"),
		WithKeyPrefix("custom:"),
		WithDimensions(1536),
		WithHNSW(16, 200),
		WithMaxBatchSize(50),
		WithTopics([]Topic{{Label: "weather", Centroid: []float32{1, 0}}}, 0.5),
	} {
		o(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" {
		t.Errorf("unexpected addrs: %v", cfg.addrs)
	}
	if cfg.password != "secret" {
		t.Errorf("unexpected password: %q", cfg.password)
	}
	if cfg.keyPrefix != "custom:" {
		t.Errorf("unexpected key prefix: %q", cfg.keyPrefix)
	}
	if cfg.dimensions != 1536 {
		t.Errorf("unexpected dimensions: %d", cfg.dimensions)
	}
	if cfg.hnswM != 16 || cfg.hnswEFConstruct != 200 {
		t.Errorf("unexpected hnsw params: %d/%d", cfg.hnswM, cfg.hnswEFConstruct)
	}
	if cfg.maxBatchSize != 50 {
		t.Errorf("unexpected max batch size: %d", cfg.maxBatchSize)
	}
	if len(cfg.topics) != 1 || cfg.threshold != 0.5 {
		t.Errorf("unexpected topics config: %v / %f", cfg.topics, cfg.threshold)
	}
}

func TestNoopEmbedder_Errors(t *testing.T) {
	var e noopEmbedder
	if _, err := e.BatchEmbed(context.Background(), []string{"text"}); err == nil {
		t.Error("expected error from unconfigured embedder")
	}
}

func TestPassthroughAssigner(t *testing.T) {
	doc, err := domain.NewDocument("", "content", nil, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	var a passthroughAssigner
	out, err := a.Assign([]domain.Document{doc}, [][]float32{{1, 0}})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got := out[0].Tag(domain.KeyTopic); got != domain.UnclassifiedTopic {
		t.Errorf("expected unclassified, got %q", got)
	}
	if out[0].Vector() == nil {
		t.Error("vector must be attached")
	}
}

func TestPassthroughAssigner_Misaligned(t *testing.T) {
	doc, err := domain.NewDocument("", "content", nil, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	var a passthroughAssigner
	_, err = a.Assign([]domain.Document{doc}, nil)
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}

type staticEmbedder struct{}

func (staticEmbedder) BatchEmbed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func TestEmbedderAdapter(t *testing.T) {
	a := &embedderAdapter{inner: staticEmbedder{}}
	res, err := a.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
}
