package domain

import "fmt"

// RequestContext carries the caller's identity for one pipeline invocation.
// Constructed per call, read-only afterwards.
type RequestContext struct {
	UserID string
}

// Validate checks that the context carries a usable identity.
// Must pass before any other pipeline work: all downstream metadata
// depends on the user id.
func (c RequestContext) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user_id is required: %w", ErrConfiguration)
	}
	return nil
}

// State is the unit of work handed to the pipeline: an ordered batch of
// input documents. The pipeline does not retain it; on success the caller
// is told to clear it.
type State struct {
	Docs []Document
}

// Signal is the completion directive returned by the pipeline. It carries
// no document contents, only the instruction that the just-processed input
// has been durably indexed and may be removed from any pending-work queue.
type Signal struct {
	Docs string `json:"docs"`
}

// DirectiveClear instructs the caller to clear the consumed input batch.
const DirectiveClear = "delete"

// ClearSignal returns the canonical completion signal.
func ClearSignal() Signal {
	return Signal{Docs: DirectiveClear}
}

// TopicAssignment is a topic label plus confidence attached to a document
// under the reserved metadata keys.
type TopicAssignment struct {
	Label      string
	Confidence float64
}
