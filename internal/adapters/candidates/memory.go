package candidates

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/okian/briefmatch/internal/domain/model"
)

// MemoryPool is an in-process Pool ordered by candidate ID.
type MemoryPool struct {
	mu    sync.RWMutex
	items []model.Candidate
}

// NewMemoryPool creates a pool holding the given candidates.
func NewMemoryPool(cands []model.Candidate) *MemoryPool {
	p := &MemoryPool{}
	p.Replace(cands)
	return p
}

// LoadFile builds a MemoryPool from a YAML seed file with a top-level
// "candidates" list.
func LoadFile(path string) (*MemoryPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrSeedFile, path, err)
	}
	var seed struct {
		Candidates []model.Candidate `yaml:"candidates"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrSeedFile, path, err)
	}
	seen := make(map[string]struct{}, len(seed.Candidates))
	for i, c := range seed.Candidates {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: candidate %d has no id", ErrSeedFile, i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrSeedFile, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return NewMemoryPool(seed.Candidates), nil
}

// Replace swaps the pool contents.
func (p *MemoryPool) Replace(cands []model.Candidate) {
	items := append([]model.Candidate(nil), cands...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	p.mu.Lock()
	p.items = items
	p.mu.Unlock()
}

// Len returns the total number of candidates, eligible or not.
func (p *MemoryPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Get returns a candidate by ID.
func (p *MemoryPool) Get(id string) (model.Candidate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := sort.Search(len(p.items), func(i int) bool { return p.items[i].ID >= id })
	if i < len(p.items) && p.items[i].ID == id {
		return p.items[i], true
	}
	return model.Candidate{}, false
}

// Eligible returns candidates passing f, up to its limit.
func (p *MemoryPool) Eligible(ctx context.Context, f Filter) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	limit := f.limit()
	out := make([]model.Candidate, 0, min(limit, len(p.items)))
	for i := range p.items {
		if len(out) == limit {
			break
		}
		if f.Matches(&p.items[i]) {
			out = append(out, p.items[i])
		}
	}
	return out, nil
}
