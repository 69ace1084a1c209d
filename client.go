package enrichd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/enrichd/internal/db/redis"
	"github.com/kailas-cloud/enrichd/internal/domain"
	"github.com/kailas-cloud/enrichd/internal/repository/sink"
	pipelineuc "github.com/kailas-cloud/enrichd/internal/usecase/pipeline"
	stampuc "github.com/kailas-cloud/enrichd/internal/usecase/stamp"
	topicsuc "github.com/kailas-cloud/enrichd/internal/usecase/topics"
)

const defaultReadinessTimeout = 10 * time.Second

// Document is a unit of input for the enrichment pipeline.
type Document struct {
	ID       string
	Content  string
	Tags     map[string]string
	Numerics map[string]float64
}

// Client is the enrichd SDK entry point: it runs the full enrichment
// pipeline (stamp, embed, label, index) against a Redis-backed search index
// without the HTTP server in between.
type Client struct {
	store    *dbRedis.Store
	pipeline *pipelineuc.Service
}

// New creates an enrichd Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       "enrichd:",
		maxBatchSize:    100,
		hnswM:           32,
		hnswEFConstruct: 400,
		threshold:       0.3,
		logger:          zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.indexName == "" {
		cfg.indexName = cfg.keyPrefix + "docs"
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("enrichd: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichd: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("enrichd: database not ready: %w", err)
	}

	client, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return client, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	var embedder domain.BatchEmbedder = &noopEmbedder{}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	}

	var assigner pipelineuc.Assigner = &passthroughAssigner{}
	if len(cfg.topics) > 0 {
		centroids := make([]topicsuc.Centroid, len(cfg.topics))
		for i, t := range cfg.topics {
			centroids[i] = topicsuc.Centroid{Label: t.Label, Vector: t.Centroid}
		}
		model, err := topicsuc.NewModel(centroids, cfg.threshold)
		if err != nil {
			return nil, fmt.Errorf("enrichd: invalid topic model: %w", err)
		}
		assigner = topicsuc.New(model, cfg.logger)
	}

	gateway := sink.New(store, sink.Config{
		IndexName:       cfg.indexName,
		KeyPrefix:       cfg.keyPrefix,
		Dimensions:      cfg.dimensions,
		HNSWM:           cfg.hnswM,
		HNSWEFConstruct: cfg.hnswEFConstruct,
	}, cfg.logger)
	sinks := pipelineuc.SinkFactoryFunc(func(ctx context.Context) (pipelineuc.SinkSession, error) {
		return gateway.Acquire(ctx)
	})

	pipe := pipelineuc.New(
		stampuc.New(cfg.logger), embedder, assigner, sinks, cfg.maxBatchSize,
	)

	return &Client{store: store, pipeline: pipe}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index enriches docs on behalf of userID and commits them to the search
// index. All documents are indexed or none. An empty docs slice is a no-op
// success; userID is always required.
func (c *Client) Index(ctx context.Context, userID string, docs []Document) error {
	batch := make([]domain.Document, 0, len(docs))
	for i, d := range docs {
		doc, err := domain.NewDocument(d.ID, d.Content, d.Tags, d.Numerics)
		if err != nil {
			return fmt.Errorf("enrichd: document %d: %w", i, err)
		}
		batch = append(batch, doc)
	}

	_, err := c.pipeline.Run(
		ctx,
		domain.State{Docs: batch},
		domain.RequestContext{UserID: userID},
	)
	if err != nil {
		return fmt.Errorf("enrichd: index: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.BatchEmbedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vectors, err := a.inner.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.BatchEmbeddingResult{Embeddings: vectors}, nil
}

// noopEmbedder returns an error on use (no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) BatchEmbed(_ context.Context, _ []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, errors.New(
		"enrichd: embedder not configured (use WithEmbedder)",
	)
}

// passthroughAssigner labels every document unclassified when no topic
// model is configured, so indexing still works without one.
type passthroughAssigner struct{}

func (passthroughAssigner) Assign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error) {
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf(
			"got %d documents but %d vectors: %w",
			len(docs), len(vectors), domain.ErrInvariantViolation,
		)
	}
	out := make([]domain.Document, len(docs))
	for i := range docs {
		out[i] = docs[i].WithTopic(domain.UnclassifiedTopic, 0)
		out[i] = out[i].WithVector(vectors[i])
	}
	return out, nil
}
