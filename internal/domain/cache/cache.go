// Package cache stores scored results per (brief hash, candidate) with a
// phase-aware lifetime, in a bounded in-process tier backed by an optional
// durable tier.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

// Default sizing of the in-process tier.
const (
	DefaultCapacity = 500
	DefaultShards   = 16
)

// Entry is a cached scoring result.
type Entry struct {
	BriefHash   string                `json:"brief_hash"`
	CandidateID string                `json:"candidate_id"`
	Result      model.ScoredCandidate `json:"result"`
	Phase       model.Phase           `json:"phase"`
	ExpiresAt   time.Time             `json:"expires_at"`
}

// Expired reports whether the entry must no longer be served.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Durable is the persistent tier. Load returns ErrNotFound for missing or
// expired entries.
type Durable interface {
	Load(ctx context.Context, briefHash, candidateID string, now time.Time) (Entry, error)
	Store(ctx context.Context, e Entry) error
	Purge(ctx context.Context, now time.Time) (int, error)
}

// Cache is the two-tier result cache. Durable-tier failures degrade to
// misses and never surface to callers.
type Cache struct {
	capacity   int
	shardCount int
	ttl        TTLPolicy
	durable    Durable
	log        logger.Logger
	now        func() time.Time
	mem        *memoryTier
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		capacity:   DefaultCapacity,
		shardCount: DefaultShards,
		ttl:        DefaultTTLPolicy(),
		log:        logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mem = newMemoryTier(c.capacity, c.shardCount)
	return c
}

// TTL returns the active lifetime policy.
func (c *Cache) TTL() TTLPolicy { return c.ttl }

// Get returns a live entry for the pair, checking the durable tier on an
// in-process miss and repopulating the in-process tier on a durable hit.
func (c *Cache) Get(ctx context.Context, briefHash, candidateID string) (Entry, bool) {
	key := entryKey(briefHash, candidateID)
	now := c.now()

	if e, ok := c.mem.get(key, now); ok {
		metrics.RecordCacheHit("memory")
		return e, true
	}

	if c.durable != nil {
		e, err := c.durable.Load(ctx, briefHash, candidateID, now)
		switch {
		case err == nil && !e.Expired(now):
			c.storeMemory(key, e)
			metrics.RecordCacheHit("durable")
			return e, true
		case err == nil, errors.Is(err, ErrNotFound):
		default:
			metrics.RecordCacheError("load")
			c.log.Warn(ctx, "durable cache load failed",
				logger.String("candidate_id", candidateID),
				logger.Error(err),
			)
		}
	}

	metrics.RecordCacheMiss()
	return Entry{}, false
}

// Set stores a result in both tiers. A non-positive ttl selects the phase
// default.
func (c *Cache) Set(ctx context.Context, briefHash, candidateID string, result model.ScoredCandidate, phase model.Phase, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl.For(phase)
	}
	e := Entry{
		BriefHash:   briefHash,
		CandidateID: candidateID,
		Result:      result,
		Phase:       phase,
		ExpiresAt:   c.now().Add(ttl),
	}
	c.storeMemory(entryKey(briefHash, candidateID), e)

	if c.durable != nil {
		if err := c.durable.Store(ctx, e); err != nil {
			metrics.RecordCacheError("store")
			c.log.Warn(ctx, "durable cache store failed",
				logger.String("candidate_id", candidateID),
				logger.String("phase", string(phase)),
				logger.Error(err),
			)
		}
	}
}

func (c *Cache) storeMemory(key string, e Entry) {
	if c.mem.set(key, e) {
		metrics.RecordCacheEviction()
	}
	metrics.UpdateCacheEntries(c.mem.len())
}

// Len returns the number of in-process entries, including expired ones not
// yet purged.
func (c *Cache) Len() int { return c.mem.len() }

// Purge removes expired entries from both tiers and returns how many were
// removed.
func (c *Cache) Purge(ctx context.Context) int {
	now := c.now()
	purged := c.mem.purge(now)
	if c.durable != nil {
		n, err := c.durable.Purge(ctx, now)
		if err != nil {
			metrics.RecordCacheError("purge")
			c.log.Warn(ctx, "durable cache purge failed", logger.Error(err))
		}
		purged += n
	}
	metrics.RecordCachePurged(purged)
	metrics.UpdateCacheEntries(c.mem.len())
	return purged
}

// RunJanitor purges expired entries every interval until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Purge(ctx); n > 0 {
				c.log.Debug(ctx, "cache purged", logger.Int("entries", n))
			}
		}
	}
}
