package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/domain"
	"github.com/kailas-cloud/enrichd/internal/logger"
	"github.com/kailas-cloud/enrichd/internal/metrics"
)

// Pipeline stage names, used for metrics and stage-failure logging.
const (
	stageStamp  = "stamp"
	stageEmbed  = "embed"
	stageAssign = "assign"
	stageIndex  = "index"
)

// Service runs the document enrichment pipeline: stamp ownership, embed,
// assign topics, commit the whole batch to the index sink. Stateless and
// safe for concurrent runs; per-run state lives on the stack.
type Service struct {
	stamper      Stamper
	embedder     domain.BatchEmbedder
	assigner     Assigner
	sinks        SinkFactory
	maxBatchSize int
}

// New creates the enrichment pipeline service.
func New(
	stamper Stamper,
	embedder domain.BatchEmbedder,
	assigner Assigner,
	sinks SinkFactory,
	maxBatchSize int,
) *Service {
	return &Service{
		stamper:      stamper,
		embedder:     embedder,
		assigner:     assigner,
		sinks:        sinks,
		maxBatchSize: maxBatchSize,
	}
}

// Run enriches and indexes one batch. The request context is validated
// before anything else; an empty batch then short-circuits to the
// completion signal without touching the embedding provider or the sink.
// On success the returned signal tells the caller to clear the consumed
// input. Any stage error fails the whole batch: nothing is indexed.
func (s *Service) Run(ctx context.Context, state domain.State, reqCtx domain.RequestContext) (domain.Signal, error) {
	log := logger.FromContext(ctx)

	if err := reqCtx.Validate(); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		return domain.Signal{}, err
	}

	if len(state.Docs) == 0 {
		log.Debug("Empty batch, nothing to enrich")
		metrics.PipelineRunsTotal.WithLabelValues("empty").Inc()
		return domain.ClearSignal(), nil
	}

	if s.maxBatchSize > 0 && len(state.Docs) > s.maxBatchSize {
		metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		return domain.Signal{}, fmt.Errorf(
			"batch of %d exceeds limit of %d: %w",
			len(state.Docs), s.maxBatchSize, domain.ErrConfiguration,
		)
	}

	docs, err := s.runStamp(state.Docs, reqCtx.UserID)
	if err != nil {
		return s.fail(log, stageStamp, err)
	}

	vectors, err := s.runEmbed(ctx, docs)
	if err != nil {
		return s.fail(log, stageEmbed, err)
	}

	docs, err = s.runAssign(docs, vectors)
	if err != nil {
		return s.fail(log, stageAssign, err)
	}

	if err := s.runIndex(ctx, docs); err != nil {
		return s.fail(log, stageIndex, err)
	}

	log.Info("Batch enriched and indexed",
		zap.Int("documents", len(docs)),
		zap.String("user_id", reqCtx.UserID),
	)
	metrics.PipelineRunsTotal.WithLabelValues("completed").Inc()
	return domain.ClearSignal(), nil
}

func (s *Service) fail(log *zap.Logger, stage string, err error) (domain.Signal, error) {
	log.Error("Pipeline stage failed", zap.String("stage", stage), zap.Error(err))
	metrics.PipelineStageFailuresTotal.WithLabelValues(stage).Inc()
	metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
	return domain.Signal{}, err
}

func (s *Service) runStamp(docs []domain.Document, userID string) ([]domain.Document, error) {
	defer observeStage(stageStamp)()
	return s.stamper.Stamp(docs, userID)
}

func (s *Service) runEmbed(ctx context.Context, docs []domain.Document) ([][]float32, error) {
	defer observeStage(stageEmbed)()

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content()
	}

	res, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(docs) {
		return nil, fmt.Errorf(
			"embedder returned %d vectors for %d documents: %w",
			len(res.Embeddings), len(docs), domain.ErrInvariantViolation,
		)
	}
	return res.Embeddings, nil
}

func (s *Service) runAssign(docs []domain.Document, vectors [][]float32) ([]domain.Document, error) {
	defer observeStage(stageAssign)()
	return s.assigner.Assign(docs, vectors)
}

func (s *Service) runIndex(ctx context.Context, docs []domain.Document) error {
	defer observeStage(stageIndex)()

	session, err := s.sinks.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	return session.Commit(ctx, docs)
}

func observeStage(stage string) func() {
	start := time.Now()
	return func() {
		metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
