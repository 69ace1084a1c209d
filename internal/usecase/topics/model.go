package topics

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/enrichd/internal/domain"
)

// Centroid is a labeled cluster center in the embedding space.
type Centroid struct {
	Label  string
	Vector []float32
}

// Model is a pre-fit topic model: labeled centroids plus a confidence
// threshold. Read-only after construction; safe for concurrent use.
type Model struct {
	centroids []Centroid
	threshold float64
	dim       int
}

// NewModel validates centroids and creates a Model.
// threshold is the minimum cosine similarity for a confident assignment;
// vectors below it are labeled unclassified.
func NewModel(centroids []Centroid, threshold float64) (*Model, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("at least one centroid is required")
	}
	if threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [-1, 1], got %f", threshold)
	}

	dim := len(centroids[0].Vector)
	seen := make(map[string]bool, len(centroids))
	for i, c := range centroids {
		if c.Label == "" {
			return nil, fmt.Errorf("centroid %d has no label", i)
		}
		if c.Label == domain.UnclassifiedTopic {
			return nil, fmt.Errorf("label %q is reserved", domain.UnclassifiedTopic)
		}
		if seen[c.Label] {
			return nil, fmt.Errorf("duplicate label %q", c.Label)
		}
		seen[c.Label] = true
		if len(c.Vector) == 0 {
			return nil, fmt.Errorf("centroid %q has an empty vector", c.Label)
		}
		if len(c.Vector) != dim {
			return nil, fmt.Errorf(
				"centroid %q dimension mismatch: got %d, want %d", c.Label, len(c.Vector), dim,
			)
		}
	}

	return &Model{centroids: centroids, threshold: threshold, dim: dim}, nil
}

// Dimensions returns the centroid dimensionality.
func (m *Model) Dimensions() int { return m.dim }

// Labels returns the known topic labels in centroid order.
func (m *Model) Labels() []string {
	labels := make([]string, len(m.centroids))
	for i, c := range m.centroids {
		labels[i] = c.Label
	}
	return labels
}

// Classify assigns the nearest centroid's label to a vector.
// A best similarity below the threshold (or a degenerate vector) yields the
// unclassified label with zero confidence — never an error.
func (m *Model) Classify(vector []float32) domain.TopicAssignment {
	best := domain.TopicAssignment{Label: domain.UnclassifiedTopic}

	for _, c := range m.centroids {
		sim := cosineSimilarity(vector, c.Vector)
		if sim >= m.threshold && sim > best.Confidence {
			best = domain.TopicAssignment{Label: c.Label, Confidence: sim}
		}
	}

	return best
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths or zero-norm inputs yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
