package candidates

import (
	"context"

	"github.com/okian/briefmatch/internal/domain/model"
)

// Source answers brief-driven pool queries with a fixed base filter.
type Source struct {
	pool Pool
	base Filter
}

// NewSource wraps p. The base filter is extended per brief with its
// exclusions.
func NewSource(p Pool, base Filter) *Source {
	return &Source{pool: p, base: base}
}

// ForBrief returns up to limit candidates eligible for b. A non-positive
// limit keeps the base filter's limit.
func (s *Source) ForBrief(ctx context.Context, b *model.Brief, limit int) ([]model.Candidate, error) {
	f := s.base.ForBrief(b)
	if limit > 0 {
		f.Limit = limit
	}
	return s.pool.Eligible(ctx, f)
}
