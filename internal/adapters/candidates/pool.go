// Package candidates provides the eligible-candidate pools the matcher draws
// from.
package candidates

import (
	"context"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

// DefaultLimit caps the number of candidates returned per query.
const DefaultLimit = 50

// Filter narrows the pool.
type Filter struct {
	RequireApproved bool
	RequireVerified bool
	Availability    []model.Availability
	Exclude         []string
	Limit           int
}

// DefaultFilter returns the filter used for matching: approved, verified,
// available or busy, capped at DefaultLimit.
func DefaultFilter() Filter {
	return Filter{
		RequireApproved: true,
		RequireVerified: true,
		Availability:    []model.Availability{model.Available, model.Busy},
		Limit:           DefaultLimit,
	}
}

// ForBrief returns f with the brief's exclusions applied.
func (f Filter) ForBrief(b *model.Brief) Filter {
	if len(b.ExcludeCandidates) > 0 {
		f.Exclude = append(append([]string(nil), f.Exclude...), b.ExcludeCandidates...)
	}
	return f
}

// Matches reports whether c passes the filter, ignoring the limit.
func (f Filter) Matches(c *model.Candidate) bool {
	if f.RequireApproved && !c.Approved {
		return false
	}
	if f.RequireVerified && !c.Verified {
		return false
	}
	if len(f.Availability) > 0 {
		ok := false
		for _, a := range f.Availability {
			if strings.EqualFold(string(a), string(c.Availability)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, id := range f.Exclude {
		if id == c.ID {
			return false
		}
	}
	return true
}

func (f Filter) availabilityStrings() []string {
	out := make([]string, len(f.Availability))
	for i, a := range f.Availability {
		out[i] = strings.ToLower(string(a))
	}
	return out
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Pool returns candidates eligible for matching.
type Pool interface {
	Eligible(ctx context.Context, f Filter) ([]model.Candidate, error)
}
