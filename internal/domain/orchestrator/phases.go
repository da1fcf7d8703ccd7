package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

const (
	jobRefine = "refine"
	jobFinal  = "final"
)

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// instant ranks the whole eligible pool from cache or local scoring.
func (o *Orchestrator) instant(r *Run) ([]model.ScoredCandidate, error) {
	ctx := r.ctx
	cands, err := o.source.ForBrief(ctx, &r.brief, o.poolLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.RecordRunFailed("pool")
		metrics.RecordErrorByComponent("orchestrator", "pool")
		o.log.Error(ctx, "candidate pool query failed",
			logger.String("run_id", r.ID),
			logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNoMatch, err)
	}
	if len(cands) == 0 {
		metrics.RecordRunFailed("empty_pool")
		return nil, ErrNoMatch
	}
	metrics.RecordPoolSize(len(cands))

	out := make([]model.ScoredCandidate, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := &cands[i]
			if o.cache != nil {
				if e, ok := o.cache.Get(gctx, r.briefHash, c.ID); ok {
					out[i] = o.fromCache(e, c)
					return nil
				}
			}
			sc := o.scoreInstant(gctx, c, &r.brief)
			out[i] = sc
			if o.cache != nil {
				o.cache.Set(gctx, r.briefHash, c.ID, sc, model.PhaseInstant, 0)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortRanking(out)
	return out, nil
}

// scoreInstant runs local and embedding scoring side by side and blends them.
func (o *Orchestrator) scoreInstant(ctx context.Context, c *model.Candidate, b *model.Brief) model.ScoredCandidate {
	start := time.Now()
	sim := make(chan float64, 1)
	go func() { sim <- o.sim.Score(ctx, c, b) }()
	res := o.local.Score(c, b)
	emb := <-sim
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	return model.ScoredCandidate{
		Candidate:      *c,
		Score:          clamp(o.localWeight*res.Total + o.embeddingWeight*emb),
		LocalScore:     res.Total,
		EmbeddingScore: emb,
		Breakdown:      res.Breakdown.Map(),
		Weights:        res.Weights.Map(),
		Phase:          model.PhaseInstant,
		Confidence:     model.ConfidenceLow,
		ScoredAt:       o.now(),
	}
}

// fromCache turns a cached entry into an instant result for c. Entries
// written by later phases keep their local and embedding parts; the blend,
// phase tag and confidence are rebuilt and remote findings dropped.
func (o *Orchestrator) fromCache(e cache.Entry, c *model.Candidate) model.ScoredCandidate {
	sc := e.Result
	sc.Candidate = *c
	if e.Phase == model.PhaseInstant && sc.Phase == model.PhaseInstant {
		return sc
	}
	sc.Score = o.instantScore(sc)
	sc.RemoteScore = nil
	sc.Phase = model.PhaseInstant
	sc.Confidence = model.ConfidenceLow
	sc.Explanation, sc.Strengths, sc.Risks = "", nil, nil
	return sc
}

// instantScore recomputes the instant blend so cached results from later
// phases refine from the same base.
func (o *Orchestrator) instantScore(sc model.ScoredCandidate) float64 {
	return clamp(o.localWeight*sc.LocalScore + o.embeddingWeight*sc.EmbeddingScore)
}

func (o *Orchestrator) scheduleBackground(r *Run) {
	if !o.sched.Schedule(r.ctx, r.ID, jobRefine, func(context.Context) { o.refine(r) }) {
		o.skip(r, model.PhaseRefined, "queue_full")
		o.skip(r, model.PhaseFinal, "queue_full")
		r.finish()
		return
	}
	time.AfterFunc(o.finalDelay, func() {
		if r.ctx.Err() != nil {
			return
		}
		if o.sched.Schedule(r.ctx, r.ID, jobFinal, func(context.Context) { o.final(r) }) {
			return
		}
		o.skip(r, model.PhaseFinal, "queue_full")
		select {
		case <-r.refined:
		case <-r.ctx.Done():
		}
		r.finish()
	})
}

// refine asks the remote scorer for quick scores on the leading candidates.
// Any failure skips the phase without an event.
func (o *Orchestrator) refine(r *Run) {
	defer r.markRefined()
	ctx := r.ctx
	if ctx.Err() != nil {
		return
	}

	rk := r.Ranking()
	lead := top(rk, o.refinedTopN)
	cands := make([]model.Candidate, len(lead))
	for i := range lead {
		cands[i] = lead[i].Candidate
	}

	scores, err := o.remote.QuickScore(ctx, &r.brief, cands)
	if err != nil {
		if ctx.Err() == nil {
			o.log.Debug(ctx, "quick scoring failed",
				logger.String("run_id", r.ID),
				logger.Error(err))
			o.skip(r, model.PhaseRefined, "error")
		}
		return
	}

	updates := make(map[string]model.ScoredCandidate, len(scores))
	for _, sc := range lead {
		remote, ok := scores[sc.Candidate.ID]
		if !ok {
			continue
		}
		remote = clamp(remote)
		next := sc
		next.RemoteScore = &remote
		next.Score = clamp((1-o.remoteWeight)*o.instantScore(sc) + o.remoteWeight*remote)
		next.Phase = model.PhaseRefined
		next.Confidence = model.ConfidenceMedium
		next.Explanation, next.Strengths, next.Risks = "", nil, nil
		next.ScoredAt = o.now()
		updates[sc.Candidate.ID] = next
	}
	if len(updates) == 0 {
		o.skip(r, model.PhaseRefined, "empty")
		return
	}
	if o.cache != nil {
		for id, sc := range updates {
			o.cache.Set(ctx, r.briefHash, id, sc, model.PhaseRefined, 0)
		}
	}
	if r.emit(model.PhaseRefined, merge(rk, updates)) {
		o.emitted(r, model.PhaseRefined)
	}
}

// final runs deep analysis on the leading candidates in parallel. It emits
// only when at least one analysis succeeded, and never before the refined
// phase has concluded. The run ends once both phases are done.
func (o *Orchestrator) final(r *Run) {
	ctx := r.ctx
	defer func() {
		select {
		case <-r.refined:
		case <-ctx.Done():
		}
		r.finish()
	}()
	if ctx.Err() != nil {
		return
	}

	lead := append([]model.ScoredCandidate(nil), top(r.Ranking(), o.finalTopN)...)

	var (
		mu       sync.Mutex
		analyses = make(map[string]model.Analysis, len(lead))
	)
	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i := range lead {
		c := &lead[i].Candidate
		g.Go(func() error {
			a, err := o.remote.DeepAnalyze(ctx, &r.brief, c)
			if err != nil {
				metrics.RecordScoringError()
				o.log.Debug(ctx, "deep analysis failed",
					logger.String("run_id", r.ID),
					logger.String("candidate_id", c.ID),
					logger.Error(err))
				return nil
			}
			mu.Lock()
			analyses[c.ID] = a
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}
	if len(analyses) == 0 {
		o.skip(r, model.PhaseFinal, "error")
		return
	}

	select {
	case <-r.refined:
	case <-ctx.Done():
		return
	}

	fresh := r.Ranking()
	updates := make(map[string]model.ScoredCandidate, len(analyses))
	for _, sc := range fresh {
		a, ok := analyses[sc.Candidate.ID]
		if !ok {
			continue
		}
		next := sc
		next.Score = clamp(a.Score)
		next.Phase = model.PhaseFinal
		next.Confidence = a.Confidence
		if next.Confidence.Rank() < 0 {
			next.Confidence = model.ConfidenceMedium
		}
		next.Explanation = a.Explanation
		next.Strengths = a.Strengths
		next.Risks = a.Risks
		next.ScoredAt = o.now()
		updates[sc.Candidate.ID] = next
	}
	if o.cache != nil {
		for id, sc := range updates {
			o.cache.Set(ctx, r.briefHash, id, sc, model.PhaseFinal, 0)
		}
	}
	if r.emit(model.PhaseFinal, merge(fresh, updates)) {
		o.emitted(r, model.PhaseFinal)
	}
}
