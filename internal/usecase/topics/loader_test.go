package topics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadModel(t *testing.T) {
	m, err := LoadModel(filepath.Join("testdata", "model.yaml"), 0.3)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if m.Dimensions() != 3 {
		t.Errorf("expected 3 dimensions, got %d", m.Dimensions())
	}
	if got := len(m.Labels()); got != 3 {
		t.Errorf("expected 3 labels, got %d", got)
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	if _, err := LoadModel(filepath.Join("testdata", "absent.yaml"), 0.3); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadModel_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("topics: [label: :"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadModel(path, 0.3); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadModel_InvalidModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("topics: []"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadModel(path, 0.3); err == nil {
		t.Error("expected error for model without centroids")
	}
}
