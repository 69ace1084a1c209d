package stamp

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

// Service stamps documents with the identity of their owning user so that
// every indexed document is attributable and filterable per user.
type Service struct {
	logger *zap.Logger
}

// New creates a stamping service.
func New(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Stamp returns copies of docs carrying userID under the reserved user_id
// key. A caller-supplied user_id tag is overwritten: the request identity
// is authoritative. Pure with respect to its inputs and idempotent.
func (s *Service) Stamp(docs []domain.Document, userID string) ([]domain.Document, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required for stamping: %w", domain.ErrConfiguration)
	}

	stamped := make([]domain.Document, len(docs))
	for i := range docs {
		if existing := docs[i].Tag(domain.KeyUserID); existing != "" && existing != userID {
			s.logger.Warn("Overwriting caller-supplied user_id",
				zap.String("document_id", docs[i].ID()),
				zap.String("supplied", existing),
			)
		}
		stamped[i] = docs[i].WithTag(domain.KeyUserID, userID)
	}

	return stamped, nil
}
