package orchestrator

import (
	"time"

	"github.com/okian/briefmatch/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithSimilarity sets the embedding similarity scorer.
func WithSimilarity(s SimilarityScorer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sim = s
		}
	}
}

// WithRemote sets the remote scorer.
func WithRemote(r RemoteScorer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.remote = r
		}
	}
}

// WithCache sets the result cache.
func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithScheduler sets where background phases run.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sched = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPoolLimit caps the number of candidates considered per run.
func WithPoolLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.poolLimit = n
		}
	}
}

// WithAlternates sets how many runners-up accompany the best candidate.
func WithAlternates(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.alternates = n
		}
	}
}

// WithTopN sets how many leading candidates the refined and final phases
// re-score.
func WithTopN(refined, final int) Option {
	return func(o *Orchestrator) {
		if refined > 0 {
			o.refinedTopN = refined
		}
		if final > 0 {
			o.finalTopN = final
		}
	}
}

// WithFinalDelay sets the gap between scheduling the refined and final phases.
func WithFinalDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.finalDelay = d
		}
	}
}

// WithInstantBlend sets the local and embedding weights of the instant
// score. Weights that do not sum to 1 are ignored.
func WithInstantBlend(local, embedding float64) Option {
	return func(o *Orchestrator) {
		if local >= 0 && embedding >= 0 && abs(local+embedding-1) < 1e-9 {
			o.localWeight = local
			o.embeddingWeight = embedding
		}
	}
}

// WithRemoteWeight sets the weight of the remote score in the refined blend.
func WithRemoteWeight(w float64) Option {
	return func(o *Orchestrator) {
		if w >= 0 && w <= 1 {
			o.remoteWeight = w
		}
	}
}

// WithConcurrency bounds per-candidate fan-out within a phase.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithCancelPrevious makes a new run for a client cancel that client's
// earlier run.
func WithCancelPrevious(enabled bool) Option {
	return func(o *Orchestrator) { o.cancelPrevious = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
