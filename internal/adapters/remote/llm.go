package remote

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

const (
	defaultQuickTimeout = 800 * time.Millisecond
	defaultDeepTimeout  = 2 * time.Second
)

// LLMScorer implements remote scoring on top of a text Generator.
type LLMScorer struct {
	gen          Generator
	limiter      *rate.Limiter
	quickTimeout time.Duration
	deepTimeout  time.Duration
	log          logger.Logger
}

// NewLLMScorer creates a scorer over gen.
func NewLLMScorer(gen Generator, opts ...Option) *LLMScorer {
	s := &LLMScorer{
		gen:          gen,
		quickTimeout: defaultQuickTimeout,
		deepTimeout:  defaultDeepTimeout,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a generator is configured.
func (s *LLMScorer) Available() bool { return s.gen != nil }

// Name identifies the backing provider.
func (s *LLMScorer) Name() string {
	if s.gen == nil {
		return "none"
	}
	return s.gen.Name()
}

// call runs one generation under its own timeout, waiting on the limiter
// inside that budget.
func (s *LLMScorer) call(ctx context.Context, op string, timeout time.Duration, system, prompt string) (string, error) {
	if s.gen == nil {
		return "", ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	status := "ok"
	defer func() {
		metrics.RecordRemoteCall(s.gen.Name(), op, status, float64(time.Since(start).Milliseconds()))
	}()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			status = "throttled"
			return "", fmt.Errorf("%s: rate limit: %w", op, err)
		}
	}
	out, err := s.gen.Generate(ctx, system, prompt)
	if err != nil {
		status = "error"
		if ctx.Err() != nil {
			status = "timeout"
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// QuickScore scores a batch of candidates with one call and returns the
// usable subset of scores keyed by candidate ID.
func (s *LLMScorer) QuickScore(ctx context.Context, b *model.Brief, cands []model.Candidate) (map[string]float64, error) {
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrBadResponse)
	}
	raw, err := s.call(ctx, "quick", s.quickTimeout, quickSystem, quickPrompt(b, cands))
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(cands))
	for i := range cands {
		known[cands[i].ID] = struct{}{}
	}
	scores, err := parseQuick(raw, known)
	if err != nil {
		s.log.Debug(ctx, "quick score response rejected", logger.String("provider", s.Name()), logger.Error(err))
		return nil, err
	}
	return scores, nil
}

// DeepAnalyze produces a verdict for a single candidate.
func (s *LLMScorer) DeepAnalyze(ctx context.Context, b *model.Brief, c *model.Candidate) (model.Analysis, error) {
	raw, err := s.call(ctx, "deep", s.deepTimeout, deepSystem, deepPrompt(b, c))
	if err != nil {
		return model.Analysis{}, err
	}
	a, err := parseDeep(raw)
	if err != nil {
		s.log.Debug(ctx, "deep analysis response rejected",
			logger.String("provider", s.Name()),
			logger.String("candidate_id", c.ID),
			logger.Error(err),
		)
		return model.Analysis{}, err
	}
	return a, nil
}
