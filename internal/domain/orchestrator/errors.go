package orchestrator

import "errors"

// Sentinel errors returned by Start.
var (
	// ErrNoMatch is returned when the candidate pool cannot be queried or
	// has no eligible candidates.
	ErrNoMatch = errors.New("no match available")
	// ErrNilBrief is returned when Start is called without a brief.
	ErrNilBrief = errors.New("brief is required")
)
