package pipeline

import (
	"context"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

// Stamper attaches the owning user identity to every document.
type Stamper interface {
	Stamp(docs []domain.Document, userID string) ([]domain.Document, error)
}

// Assigner labels documents from their positionally aligned vectors.
type Assigner interface {
	Assign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error)
}

// SinkSession is a batch-scoped index write session.
type SinkSession interface {
	Commit(ctx context.Context, docs []domain.Document) error
	Close() error
}

// SinkFactory hands out write sessions scoped to a single batch.
type SinkFactory interface {
	Acquire(ctx context.Context) (SinkSession, error)
}

// SinkFactoryFunc adapts a function to the SinkFactory interface.
type SinkFactoryFunc func(ctx context.Context) (SinkSession, error)

// Acquire calls f.
func (f SinkFactoryFunc) Acquire(ctx context.Context) (SinkSession, error) {
	return f(ctx)
}
