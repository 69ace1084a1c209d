package topics

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/domain"
	"github.com/kailas-cloud/enrichd/internal/metrics"
)

// Service assigns topic labels to documents using a pre-fit model.
type Service struct {
	model  *Model
	logger *zap.Logger
}

// New creates a topic assignment service.
func New(model *Model, logger *zap.Logger) *Service {
	return &Service{model: model, logger: logger}
}

// Assign labels each document from the vector at the same batch position.
// docs and vectors must be positionally aligned; a length mismatch is a
// programming defect and fails the whole batch with ErrInvariantViolation.
// A vector no centroid claims gets the unclassified label — one uncertain
// document never aborts the rest.
func (s *Service) Assign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error) {
	if len(docs) != len(vectors) {
		s.logger.Error("Document/vector batch misalignment",
			zap.Int("documents", len(docs)),
			zap.Int("vectors", len(vectors)),
		)
		return nil, fmt.Errorf(
			"got %d documents but %d vectors: %w",
			len(docs), len(vectors), domain.ErrInvariantViolation,
		)
	}

	labeled := make([]domain.Document, len(docs))
	for i := range docs {
		assignment := s.model.Classify(vectors[i])
		labeled[i] = docs[i].WithTopic(assignment.Label, assignment.Confidence)
		labeled[i] = labeled[i].WithVector(vectors[i])
		metrics.TopicsAssignedTotal.WithLabelValues(assignment.Label).Inc()
	}

	return labeled, nil
}
