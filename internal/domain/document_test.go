package domain

import "testing"

func TestNewDocument_GeneratesID(t *testing.T) {
	doc, err := NewDocument("", "some content", nil, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.ID() == "" {
		t.Error("expected generated ID for empty input")
	}
}

func TestNewDocument_EmptyContent(t *testing.T) {
	if _, err := NewDocument("a", "", nil, nil); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestNewDocument_ClonesMetadata(t *testing.T) {
	tags := map[string]string{"source": "upload"}
	doc, err := NewDocument("a", "content", tags, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	tags["source"] = "mutated"
	if doc.Tag("source") != "upload" {
		t.Error("document shares caller's tag map")
	}
}

func TestWithTag_DoesNotMutateOriginal(t *testing.T) {
	orig, err := NewDocument("a", "content", map[string]string{"lang": "en"}, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	stamped := orig.WithTag(KeyUserID, "alice")

	if orig.Tag(KeyUserID) != "" {
		t.Error("original document was mutated")
	}
	if stamped.Tag(KeyUserID) != "alice" {
		t.Errorf("expected user_id=alice, got %q", stamped.Tag(KeyUserID))
	}
	if stamped.Tag("lang") != "en" {
		t.Error("original metadata key lost")
	}
}

func TestWithTag_OverwritesCollision(t *testing.T) {
	orig, err := NewDocument("a", "content", map[string]string{KeyUserID: "mallory"}, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	stamped := orig.WithTag(KeyUserID, "alice")
	if stamped.Tag(KeyUserID) != "alice" {
		t.Errorf("new value must win on collision, got %q", stamped.Tag(KeyUserID))
	}
}

func TestWithTopic(t *testing.T) {
	orig, err := NewDocument("a", "content", nil, map[string]float64{"score": 1.5})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	labeled := orig.WithTopic("databases", 0.87)

	if labeled.Tag(KeyTopic) != "databases" {
		t.Errorf("expected topic tag, got %q", labeled.Tag(KeyTopic))
	}
	if labeled.Numerics()[KeyTopicConfidence] != 0.87 {
		t.Errorf("expected confidence 0.87, got %f", labeled.Numerics()[KeyTopicConfidence])
	}
	if labeled.Numerics()["score"] != 1.5 {
		t.Error("original numeric key lost")
	}
	if len(orig.Tags()) != 0 {
		t.Error("original document was mutated")
	}
}

func TestWithVector(t *testing.T) {
	orig, err := NewDocument("a", "content", nil, nil)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	vec := []float32{0.1, 0.2}
	withVec := orig.WithVector(vec)

	if orig.Vector() != nil {
		t.Error("original document was mutated")
	}
	if len(withVec.Vector()) != 2 {
		t.Errorf("expected vector of len 2, got %d", len(withVec.Vector()))
	}
}

func TestRequestContext_Validate(t *testing.T) {
	if err := (RequestContext{UserID: "alice"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (RequestContext{}).Validate(); err == nil {
		t.Error("expected error for empty user_id")
	}
}

func TestClearSignal(t *testing.T) {
	s := ClearSignal()
	if s.Docs != DirectiveClear {
		t.Errorf("expected %q, got %q", DirectiveClear, s.Docs)
	}
}
