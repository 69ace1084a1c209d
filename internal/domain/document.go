package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Reserved metadata keys written by the enrichment pipeline.
// Caller-supplied keys may collide only intentionally: stamping and topic
// assignment overwrite them.
const (
	KeyUserID          = "user_id"
	KeyTopic           = "topic"
	KeyTopicConfidence = "topic_confidence"
)

// UnclassifiedTopic is assigned when no centroid matches with enough confidence.
const UnclassifiedTopic = "unclassified"

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is an immutable unit of text content plus metadata.
// Enrichment stages never mutate a Document; they return copies with
// merged metadata via the With* methods.
type Document struct {
	id       string
	content  string
	tags     map[string]string
	numerics map[string]float64
	vector   []float32
}

// NewDocument validates and creates a Document.
// An empty id is replaced with a generated UUID.
func NewDocument(id, content string, tags map[string]string, numerics map[string]float64) (Document, error) {
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if id == "" {
		id = uuid.NewString()
	}

	return Document{
		id:       id,
		content:  content,
		tags:     cloneStringMap(tags),
		numerics: cloneFloat64Map(numerics),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration, tests).
func Reconstruct(
	id, content string, tags map[string]string, numerics map[string]float64, vector []float32,
) Document {
	return Document{id: id, content: content, tags: tags, numerics: numerics, vector: vector}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the document text content.
func (d *Document) Content() string { return d.content }

// Tags returns the string metadata fields.
func (d *Document) Tags() map[string]string { return d.tags }

// Numerics returns the numeric metadata fields.
func (d *Document) Numerics() map[string]float64 { return d.numerics }

// Vector returns the embedding vector.
func (d *Document) Vector() []float32 { return d.vector }

// Tag returns a single tag value ("" when absent).
func (d *Document) Tag(key string) string { return d.tags[key] }

// WithTag returns a copy whose tags are the shallow union of the original
// tags and {key: value}, the new value winning on collision.
func (d *Document) WithTag(key, value string) Document {
	tags := cloneStringMap(d.tags)
	if tags == nil {
		tags = make(map[string]string, 1)
	}
	tags[key] = value
	return Document{id: d.id, content: d.content, tags: tags, numerics: d.numerics, vector: d.vector}
}

// WithTopic returns a copy carrying the topic label and confidence under the
// reserved keys.
func (d *Document) WithTopic(label string, confidence float64) Document {
	tags := cloneStringMap(d.tags)
	if tags == nil {
		tags = make(map[string]string, 1)
	}
	tags[KeyTopic] = label

	numerics := cloneFloat64Map(d.numerics)
	if numerics == nil {
		numerics = make(map[string]float64, 1)
	}
	numerics[KeyTopicConfidence] = confidence

	return Document{id: d.id, content: d.content, tags: tags, numerics: numerics, vector: d.vector}
}

// WithVector returns a copy with the given embedding vector set.
func (d *Document) WithVector(v []float32) Document {
	return Document{id: d.id, content: d.content, tags: d.tags, numerics: d.numerics, vector: v}
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func cloneFloat64Map(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
