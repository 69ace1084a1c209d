package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/db"
	"github.com/kailas-cloud/enrichd/internal/domain"
	"github.com/kailas-cloud/enrichd/internal/metrics"
)

// Session is a write session scoped to a single batch. It is not safe for
// concurrent use; each pipeline run acquires its own.
type Session struct {
	gateway *Gateway
	closed  bool
}

// Commit writes the whole batch to the index. Either every document is
// written or none remain: on a partial write the already-written keys are
// rolled back before the error is returned.
func (s *Session) Commit(ctx context.Context, docs []domain.Document) error {
	if s.closed {
		return fmt.Errorf("session already closed: %w", domain.ErrSink)
	}
	if len(docs) == 0 {
		return nil
	}

	for i := range docs {
		if len(docs[i].Vector()) == 0 {
			return fmt.Errorf(
				"document %s has no vector: %w", docs[i].ID(), domain.ErrInvariantViolation,
			)
		}
	}

	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    s.gateway.docKey(docs[i].ID()),
			Fields: docFields(&docs[i]),
		}
	}

	if err := s.gateway.store.HSetMulti(ctx, items); err != nil {
		s.rollback(ctx, items)
		return fmt.Errorf("index %d documents: %w: %w", len(docs), err, domain.ErrSink)
	}

	metrics.DocumentsIndexedTotal.Add(float64(len(docs)))
	return nil
}

// rollback removes any keys left behind by a failed batch write. Best
// effort: deletion failures are logged, not returned, since the original
// write error is what the caller needs.
func (s *Session) rollback(ctx context.Context, items []db.HashSetItem) {
	for _, item := range items {
		if err := s.gateway.store.Del(ctx, item.Key); err != nil {
			s.gateway.logger.Warn("Rollback delete failed",
				zap.String("key", item.Key),
				zap.Error(err),
			)
		}
	}
}

// Close releases the session. Idempotent; Commit calls after Close fail.
func (s *Session) Close() error {
	s.closed = true
	return nil
}
