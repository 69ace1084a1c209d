package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

type fixture struct {
	stamper  *mockStamper
	embedder *mockBatchEmbedder
	assigner *mockAssigner
	session  *mockSession
	sinks    *mockSinkFactory
	service  *Service
}

func newFixture(maxBatchSize int) *fixture {
	f := &fixture{
		stamper:  &mockStamper{},
		embedder: &mockBatchEmbedder{},
		assigner: &mockAssigner{},
		session:  &mockSession{},
	}
	f.sinks = &mockSinkFactory{session: f.session}
	f.service = New(f.stamper, f.embedder, f.assigner, f.sinks, maxBatchSize)
	return f
}

func batchOf(t *testing.T, n int) domain.State {
	t.Helper()
	docs := make([]domain.Document, n)
	for i := range docs {
		doc, err := domain.NewDocument("", fmt.Sprintf("document %d", i), nil, nil)
		if err != nil {
			t.Fatalf("NewDocument: %v", err)
		}
		docs[i] = doc
	}
	return domain.State{Docs: docs}
}

func TestRun_HappyPath(t *testing.T) {
	f := newFixture(100)

	signal, err := f.service.Run(context.Background(), batchOf(t, 3), domain.RequestContext{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if signal.Docs != domain.DirectiveClear {
		t.Errorf("expected clear directive, got %q", signal.Docs)
	}
	if len(f.session.committed) != 1 {
		t.Fatalf("expected 1 committed batch, got %d", len(f.session.committed))
	}
	batch := f.session.committed[0]
	if len(batch) != 3 {
		t.Fatalf("expected 3 committed documents, got %d", len(batch))
	}
	for i := range batch {
		if got := batch[i].Tag(domain.KeyUserID); got != "user-1" {
			t.Errorf("document %d: expected user-1, got %q", i, got)
		}
		if got := batch[i].Tag(domain.KeyTopic); got != "general" {
			t.Errorf("document %d: expected topic, got %q", i, got)
		}
		if batch[i].Vector() == nil {
			t.Errorf("document %d: vector missing", i)
		}
	}
	if f.session.closes != 1 {
		t.Errorf("session must be closed exactly once, got %d", f.session.closes)
	}
}

func TestRun_MissingIdentity(t *testing.T) {
	f := newFixture(100)

	_, err := f.service.Run(context.Background(), batchOf(t, 2), domain.RequestContext{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if f.embedder.calls != 0 {
		t.Error("embedding provider must not be called without an identity")
	}
	if f.sinks.acquires != 0 {
		t.Error("sink must not be touched without an identity")
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	f := newFixture(100)

	signal, err := f.service.Run(context.Background(), domain.State{}, domain.RequestContext{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if signal.Docs != domain.DirectiveClear {
		t.Errorf("empty batch still completes with the clear directive, got %q", signal.Docs)
	}
	if f.embedder.calls != 0 {
		t.Error("empty batch must not call the embedding provider")
	}
	if f.sinks.acquires != 0 {
		t.Error("empty batch must not acquire a sink session")
	}
}

func TestRun_EmptyBatchStillNeedsIdentity(t *testing.T) {
	f := newFixture(100)

	_, err := f.service.Run(context.Background(), domain.State{}, domain.RequestContext{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("identity is validated before the empty short-circuit, got %v", err)
	}
}

func TestRun_BatchOverLimit(t *testing.T) {
	f := newFixture(2)

	_, err := f.service.Run(context.Background(), batchOf(t, 3), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if f.embedder.calls != 0 {
		t.Error("oversized batch must be rejected before embedding")
	}
}

func TestRun_EmbedderFailure(t *testing.T) {
	f := newFixture(100)
	providerErr := fmt.Errorf("provider down: %w", domain.ErrEmbeddingProvider)
	f.embedder.err = providerErr

	_, err := f.service.Run(context.Background(), batchOf(t, 2), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
	if f.sinks.acquires != 0 {
		t.Error("nothing may reach the sink when embedding fails")
	}
}

func TestRun_EmbedderCountMismatch(t *testing.T) {
	f := newFixture(100)
	f.embedder.short = true

	_, err := f.service.Run(context.Background(), batchOf(t, 2), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if f.sinks.acquires != 0 {
		t.Error("nothing may reach the sink on a count mismatch")
	}
}

func TestRun_AssignerFailure(t *testing.T) {
	f := newFixture(100)
	f.assigner.err = fmt.Errorf("misaligned: %w", domain.ErrInvariantViolation)

	_, err := f.service.Run(context.Background(), batchOf(t, 1), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if f.sinks.acquires != 0 {
		t.Error("nothing may reach the sink when assignment fails")
	}
}

func TestRun_SinkAcquireFailure(t *testing.T) {
	f := newFixture(100)
	f.sinks.acquireErr = fmt.Errorf("index unavailable: %w", domain.ErrSink)

	_, err := f.service.Run(context.Background(), batchOf(t, 1), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrSink) {
		t.Fatalf("expected ErrSink, got %v", err)
	}
}

func TestRun_CommitFailureClosesSession(t *testing.T) {
	f := newFixture(100)
	f.session.commitErr = fmt.Errorf("write refused: %w", domain.ErrSink)

	_, err := f.service.Run(context.Background(), batchOf(t, 1), domain.RequestContext{UserID: "user-1"})
	if !errors.Is(err, domain.ErrSink) {
		t.Fatalf("expected ErrSink, got %v", err)
	}
	if f.session.closes != 1 {
		t.Errorf("session must be closed even when commit fails, got %d closes", f.session.closes)
	}
	if len(f.session.committed) != 0 {
		t.Error("no batch may be recorded as committed")
	}
}

func TestRun_ConcurrentUsersStayDisjoint(t *testing.T) {
	f := newFixture(100)

	const runs = 8
	var wg sync.WaitGroup
	errs := make([]error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reqCtx := domain.RequestContext{UserID: fmt.Sprintf("user-%d", i)}
			_, errs[i] = f.service.Run(context.Background(), batchOf(t, 2), reqCtx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if len(f.session.committed) != runs {
		t.Fatalf("expected %d committed batches, got %d", runs, len(f.session.committed))
	}
	for _, batch := range f.session.committed {
		owner := batch[0].Tag(domain.KeyUserID)
		for i := range batch {
			if got := batch[i].Tag(domain.KeyUserID); got != owner {
				t.Errorf("batch mixes owners: %q and %q", owner, got)
			}
		}
	}
}

func TestRun_InputNotMutated(t *testing.T) {
	f := newFixture(100)
	state := batchOf(t, 1)

	if _, err := f.service.Run(context.Background(), state, domain.RequestContext{UserID: "user-1"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Docs[0].Tag(domain.KeyUserID) != "" {
		t.Error("input batch must not be mutated")
	}
}
