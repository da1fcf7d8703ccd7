package similarity

import "errors"

// Sentinel errors for embedding operations.
var (
	// ErrEmptyText is returned when there is nothing to embed.
	ErrEmptyText = errors.New("empty text")
	// ErrDimensionMismatch is returned when an embedder produces a vector of an unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNotFound is returned by stores when no embedding is persisted for a candidate.
	ErrNotFound = errors.New("embedding not found")
)
