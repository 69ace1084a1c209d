package sink

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/enrichd/internal/db"
	"github.com/kailas-cloud/enrichd/internal/domain"
)

// Hash field names for indexed documents. Tag and numeric metadata keys are
// stored under their own names alongside these.
const (
	fieldContent = "content"
	fieldVector  = "vector"
)

// Store is the slice of the database facade the sink needs.
type Store interface {
	db.IndexManager
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
}

// Config holds index sink settings.
type Config struct {
	IndexName       string
	KeyPrefix       string
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Gateway owns the search index lifecycle and hands out write sessions.
// The index schema is created lazily on the first acquire and reused after.
type Gateway struct {
	store  Store
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// New creates an index sink gateway.
func New(store Store, cfg Config, logger *zap.Logger) *Gateway {
	return &Gateway{store: store, cfg: cfg, logger: logger}
}

// Acquire opens a write session scoped to a single batch. The caller must
// Close it when done, whether or not the commit succeeded.
// Only success is latched: a transient ensure failure leaves the index
// un-ensured so the next acquire retries instead of failing forever.
func (g *Gateway) Acquire(ctx context.Context) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.ensured {
		if err := g.ensureIndex(ctx); err != nil {
			return nil, fmt.Errorf("acquire index sink: %w: %w", err, domain.ErrSink)
		}
		g.ensured = true
	}

	return &Session{gateway: g}, nil
}

func (g *Gateway) ensureIndex(ctx context.Context) error {
	exists, err := g.store.IndexExists(ctx, g.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", g.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     g.cfg.IndexName,
		Prefixes: []string{g.cfg.KeyPrefix + "doc:"},
		Fields: []db.IndexField{
			{Name: domain.KeyUserID, Type: db.IndexFieldTag},
			{Name: domain.KeyTopic, Type: db.IndexFieldTag},
			{Name: domain.KeyTopicConfidence, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         g.cfg.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           g.cfg.HNSWM,
				VectorEFConstruct: g.cfg.HNSWEFConstruct,
			},
		},
	}
	if err := g.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", g.cfg.IndexName, err)
	}

	g.logger.Info("Created search index",
		zap.String("index", g.cfg.IndexName),
		zap.Int("dimensions", g.cfg.Dimensions),
	)
	return nil
}

func (g *Gateway) docKey(id string) string {
	return g.cfg.KeyPrefix + "doc:" + id
}

// docFields flattens a document into Redis hash fields.
func docFields(doc *domain.Document) map[string]string {
	fields := make(map[string]string, len(doc.Tags())+len(doc.Numerics())+2)
	for k, v := range doc.Tags() {
		fields[k] = v
	}
	for k, v := range doc.Numerics() {
		fields[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	fields[fieldContent] = doc.Content()
	fields[fieldVector] = string(vectorToBytes(doc.Vector()))
	return fields
}

// vectorToBytes encodes float32 values as little-endian binary, the layout
// RediSearch expects for VECTOR fields.
func vectorToBytes(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
