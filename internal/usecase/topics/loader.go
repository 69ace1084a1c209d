package topics

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// modelFile is the on-disk YAML shape of a pre-fit topic model.
type modelFile struct {
	Topics []struct {
		Label    string    `yaml:"label"`
		Centroid []float32 `yaml:"centroid"`
	} `yaml:"topics"`
}

// LoadModel reads a pre-fit topic model from a YAML file.
// Fitting happens offline; this only hydrates the result.
func LoadModel(path string, threshold float64) (*Model, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read topic model %s: %w", path, err)
	}

	var file modelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse topic model %s: %w", path, err)
	}

	centroids := make([]Centroid, len(file.Topics))
	for i, t := range file.Topics {
		centroids[i] = Centroid{Label: t.Label, Vector: t.Centroid}
	}

	model, err := NewModel(centroids, threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid topic model %s: %w", path, err)
	}
	return model, nil
}
