package domain

import "errors"

var (
	// ErrConfiguration signals missing or invalid request configuration
	// (most notably an absent user identity). Rejected, never retried.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrEmbeddingProvider signals an embedding backend failure or a
	// vector count mismatch. Surfaced as-is; the caller decides on retry.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrInvariantViolation signals a broken internal alignment contract.
	// A programming defect, fatal to the run.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrSink signals that the index backend rejected a commit.
	// The run has made no partial commit when this is returned.
	ErrSink = errors.New("index sink error")

	// ErrRateLimited signals a rate limit hit at the embedding provider.
	ErrRateLimited = errors.New("rate limited")
)
