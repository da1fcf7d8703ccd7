// Package orchestrator runs progressive matches: an instant local ranking,
// then optional remote refinement and final deep analysis, each published as
// a single ordered event on the run's stream.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

// Defaults.
const (
	DefaultPoolLimit       = 50
	DefaultAlternates      = 3
	DefaultRefinedTopN     = 10
	DefaultFinalTopN       = 5
	DefaultFinalDelay      = 250 * time.Millisecond
	DefaultLocalWeight     = 0.7
	DefaultEmbeddingWeight = 0.3
	DefaultRemoteWeight    = 0.7
	DefaultConcurrency     = 8
)

// Stats is a snapshot of orchestrator counters.
type Stats struct {
	RunsStarted  int64  `json:"runs_started"`
	RunsActive   int    `json:"runs_active"`
	RunsCanceled int64  `json:"runs_canceled"`
	RunsFailed   int64  `json:"runs_failed"`
	Instant      int64  `json:"instant_emitted"`
	Refined      int64  `json:"refined_emitted"`
	Final        int64  `json:"final_emitted"`
	Skipped      int64  `json:"phases_skipped"`
	Remote       string `json:"remote"`
}

type counters struct {
	started  atomic.Int64
	canceled atomic.Int64
	failed   atomic.Int64
	instant  atomic.Int64
	refined  atomic.Int64
	final    atomic.Int64
	skipped  atomic.Int64
}

// Orchestrator starts and tracks runs.
type Orchestrator struct {
	source CandidateSource
	local  LocalScorer
	sim    SimilarityScorer
	remote RemoteScorer
	cache  ResultCache
	sched  Scheduler
	log    logger.Logger
	now    func() time.Time

	poolLimit       int
	alternates      int
	refinedTopN     int
	finalTopN       int
	finalDelay      time.Duration
	localWeight     float64
	embeddingWeight float64
	remoteWeight    float64
	concurrency     int
	cancelPrevious  bool

	mu       sync.Mutex
	runs     map[string]*Run
	byClient map[string]*Run

	stats counters
}

// New creates an orchestrator over a candidate source and a local scorer.
// Similarity defaults to a neutral score and remote scoring to unavailable.
func New(source CandidateSource, local LocalScorer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:          source,
		local:           local,
		sim:             neutralSimilarity{},
		remote:          unavailableRemote{},
		sched:           GoScheduler{},
		log:             logger.Nop(),
		now:             time.Now,
		poolLimit:       DefaultPoolLimit,
		alternates:      DefaultAlternates,
		refinedTopN:     DefaultRefinedTopN,
		finalTopN:       DefaultFinalTopN,
		finalDelay:      DefaultFinalDelay,
		localWeight:     DefaultLocalWeight,
		embeddingWeight: DefaultEmbeddingWeight,
		remoteWeight:    DefaultRemoteWeight,
		concurrency:     DefaultConcurrency,
		cancelPrevious:  true,
		runs:            make(map[string]*Run),
		byClient:        make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins a run for b. The instant phase completes before Start
// returns, so on success the first event is already buffered on the run's
// stream. Refined and final phases continue in the background when a remote
// scorer is available.
func (o *Orchestrator) Start(ctx context.Context, b *model.Brief) (*Run, error) {
	if b == nil {
		return nil, ErrNilBrief
	}
	r := newRun(ctx, uuid.NewString(), b, cache.BriefHash(b), o.alternates, o.now)
	o.register(r)
	o.stats.started.Add(1)
	metrics.RecordRunStarted()

	go func() {
		<-r.ctx.Done()
		r.finish()
	}()

	rk, err := o.instant(r)
	if err != nil {
		if r.Canceled() || ctx.Err() != nil {
			r.finish()
			return nil, fmt.Errorf("instant phase: %w", context.Cause(r.ctx))
		}
		o.stats.failed.Add(1)
		r.finish()
		return nil, err
	}
	if !r.emit(model.PhaseInstant, rk) {
		r.finish()
		return nil, fmt.Errorf("instant phase: %w", context.Canceled)
	}
	o.emitted(r, model.PhaseInstant)

	if !o.remote.Available() {
		o.skip(r, model.PhaseRefined, "unavailable")
		o.skip(r, model.PhaseFinal, "unavailable")
		r.finish()
		return r, nil
	}
	o.scheduleBackground(r)
	return r, nil
}

// Cancel stops the run with the given ID. It reports whether the run was
// still active.
func (o *Orchestrator) Cancel(runID string) bool {
	o.mu.Lock()
	r, ok := o.runs[runID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	r.Cancel()
	return true
}

// Stats returns a snapshot of the orchestrator counters.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	active := len(o.runs)
	o.mu.Unlock()
	return Stats{
		RunsStarted:  o.stats.started.Load(),
		RunsActive:   active,
		RunsCanceled: o.stats.canceled.Load(),
		RunsFailed:   o.stats.failed.Load(),
		Instant:      o.stats.instant.Load(),
		Refined:      o.stats.refined.Load(),
		Final:        o.stats.final.Load(),
		Skipped:      o.stats.skipped.Load(),
		Remote:       o.remote.Name(),
	}
}

// Explain scores a single candidate against b the way the instant phase
// does, without consulting or filling the cache.
func (o *Orchestrator) Explain(ctx context.Context, c *model.Candidate, b *model.Brief) model.ScoredCandidate {
	return o.scoreInstant(ctx, c, b)
}

// Shutdown cancels every active run.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	runs := make([]*Run, 0, len(o.runs))
	for _, r := range o.runs {
		runs = append(runs, r)
	}
	o.mu.Unlock()
	for _, r := range runs {
		r.Cancel()
	}
}

func (o *Orchestrator) register(r *Run) {
	r.onFinish = o.unregister

	o.mu.Lock()
	var prev *Run
	if r.ClientID != "" {
		if o.cancelPrevious {
			prev = o.byClient[r.ClientID]
		}
		o.byClient[r.ClientID] = r
	}
	o.runs[r.ID] = r
	o.mu.Unlock()

	if prev != nil {
		o.log.Debug(r.ctx, "cancelling superseded run",
			logger.String("run_id", prev.ID),
			logger.String("client_id", r.ClientID))
		prev.Cancel()
	}
}

func (o *Orchestrator) unregister(r *Run) {
	o.mu.Lock()
	delete(o.runs, r.ID)
	if cur, ok := o.byClient[r.ClientID]; ok && cur == r {
		delete(o.byClient, r.ClientID)
	}
	o.mu.Unlock()

	if r.Canceled() {
		o.stats.canceled.Add(1)
		metrics.RecordRunCanceled()
	}
}

func (o *Orchestrator) emitted(r *Run, p model.Phase) {
	switch p {
	case model.PhaseInstant:
		o.stats.instant.Add(1)
	case model.PhaseRefined:
		o.stats.refined.Add(1)
	case model.PhaseFinal:
		o.stats.final.Add(1)
	}
	elapsed := o.now().Sub(r.started)
	metrics.RecordPhaseEmitted(string(p), float64(elapsed.Milliseconds()))
	o.log.Debug(r.ctx, "phase emitted",
		logger.String("run_id", r.ID),
		logger.String("phase", string(p)),
		logger.Duration("elapsed", elapsed))
}

func (o *Orchestrator) skip(r *Run, p model.Phase, reason string) {
	o.stats.skipped.Add(1)
	metrics.RecordPhaseSkipped(string(p), reason)
	o.log.Debug(r.ctx, "phase skipped",
		logger.String("run_id", r.ID),
		logger.String("phase", string(p)),
		logger.String("reason", reason))
}
