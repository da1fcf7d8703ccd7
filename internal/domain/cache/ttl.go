package cache

import (
	"time"

	"github.com/okian/briefmatch/internal/domain/model"
)

// TTLPolicy holds the lifetime of a cached result per phase. Later phases
// are more expensive to compute and live longer.
type TTLPolicy struct {
	Instant time.Duration
	Refined time.Duration
	Final   time.Duration
}

// DefaultTTLPolicy returns the default lifetimes.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Instant: 5 * time.Minute,
		Refined: time.Hour,
		Final:   24 * time.Hour,
	}
}

// For returns the lifetime for a phase.
func (p TTLPolicy) For(phase model.Phase) time.Duration {
	switch phase {
	case model.PhaseRefined:
		return p.Refined
	case model.PhaseFinal:
		return p.Final
	default:
		return p.Instant
	}
}
