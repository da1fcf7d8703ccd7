package orchestrator

import (
	"context"
	"time"

	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/internal/domain/scoring"
)

// CandidateSource returns the candidates eligible for a brief.
type CandidateSource interface {
	ForBrief(ctx context.Context, b *model.Brief, limit int) ([]model.Candidate, error)
}

// LocalScorer is the deterministic attribute scorer.
type LocalScorer interface {
	Score(c *model.Candidate, b *model.Brief) scoring.Result
}

// SimilarityScorer returns an embedding similarity on a 0..100 scale. It
// never fails; degraded lookups return a neutral score.
type SimilarityScorer interface {
	Score(ctx context.Context, c *model.Candidate, b *model.Brief) float64
}

// RemoteScorer is the optional remote scoring capability.
type RemoteScorer interface {
	Available() bool
	Name() string
	QuickScore(ctx context.Context, b *model.Brief, cands []model.Candidate) (map[string]float64, error)
	DeepAnalyze(ctx context.Context, b *model.Brief, c *model.Candidate) (model.Analysis, error)
}

// ResultCache stores scored results per brief hash and candidate.
type ResultCache interface {
	Get(ctx context.Context, briefHash, candidateID string) (cache.Entry, bool)
	Set(ctx context.Context, briefHash, candidateID string, result model.ScoredCandidate, phase model.Phase, ttl time.Duration)
}

// Scheduler runs background phase work. Schedule returns false when the work
// was rejected.
type Scheduler interface {
	Schedule(ctx context.Context, runID, name string, fn func(context.Context)) bool
}

// GoScheduler runs each job on its own goroutine.
type GoScheduler struct{}

// Schedule starts fn immediately.
func (GoScheduler) Schedule(ctx context.Context, _, _ string, fn func(context.Context)) bool {
	go fn(ctx)
	return true
}

type unavailableRemote struct{}

func (unavailableRemote) Available() bool { return false }
func (unavailableRemote) Name() string    { return "none" }
func (unavailableRemote) QuickScore(context.Context, *model.Brief, []model.Candidate) (map[string]float64, error) {
	return nil, nil
}
func (unavailableRemote) DeepAnalyze(context.Context, *model.Brief, *model.Candidate) (model.Analysis, error) {
	return model.Analysis{}, nil
}

type neutralSimilarity struct{}

func (neutralSimilarity) Score(context.Context, *model.Candidate, *model.Brief) float64 { return 50 }
