package health

import "context"

// IndexPinger checks index store availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelInfo exposes the loaded topic model for readiness reporting.
type ModelInfo interface {
	Dimensions() int
	Labels() []string
}
