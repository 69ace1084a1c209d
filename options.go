package enrichd

import (
	"context"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder  Embedder
	topics    []Topic
	threshold float64

	keyPrefix       string
	indexName       string
	dimensions      int
	hnswM           int
	hnswEFConstruct int
	maxBatchSize    int

	logger *zap.Logger
}

// Embedder is the public text vectorization contract. Implementations must
// return one vector per input text, in input order.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// Topic is a labeled centroid of a pre-fit topic model.
type Topic struct {
	Label    string
	Centroid []float32
}

// WithRedis sets the Redis connection (Redis 8+ with the search module).
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithEmbedder sets the embedding provider.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithTopics sets the pre-fit topic model: labeled centroids plus the
// minimum cosine similarity for a confident assignment.
func WithTopics(topics []Topic, threshold float64) Option {
	return func(c *clientConfig) {
		c.topics = topics
		c.threshold = threshold
	}
}

// WithKeyPrefix sets the storage key prefix (default "enrichd:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithDimensions sets the embedding dimensionality used for the index schema.
func WithDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.dimensions = dim
	}
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithMaxBatchSize caps the number of documents accepted per Index call.
func WithMaxBatchSize(size int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = size
	}
}

// WithLogger enables structured logging for client operations.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
