package remote

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/briefmatch/pkg/logger"
)

// Option applies a configuration option to the LLMScorer.
type Option func(*LLMScorer)

// WithQuickTimeout bounds each batched quick-score call.
func WithQuickTimeout(d time.Duration) Option {
	return func(s *LLMScorer) {
		if d > 0 {
			s.quickTimeout = d
		}
	}
}

// WithDeepTimeout bounds each per-candidate analysis call.
func WithDeepTimeout(d time.Duration) Option {
	return func(s *LLMScorer) {
		if d > 0 {
			s.deepTimeout = d
		}
	}
}

// WithRateLimit caps outbound calls per second with the given burst. A
// non-positive rate disables limiting.
func WithRateLimit(perSec float64, burst int) Option {
	return func(s *LLMScorer) {
		if perSec <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *LLMScorer) {
		if l != nil {
			s.log = l
		}
	}
}
