package cache

import (
	"time"

	"github.com/okian/briefmatch/pkg/logger"
)

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithCapacity sets the maximum number of in-process entries.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithShards sets the number of in-process shards.
func WithShards(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.shardCount = n
		}
	}
}

// WithTTLPolicy sets the per-phase lifetimes.
func WithTTLPolicy(p TTLPolicy) Option {
	return func(c *Cache) {
		if p.Instant > 0 && p.Refined > 0 && p.Final > 0 {
			c.ttl = p
		}
	}
}

// WithDurable attaches the durable tier.
func WithDurable(d Durable) Option {
	return func(c *Cache) { c.durable = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}
