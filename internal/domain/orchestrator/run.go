package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/briefmatch/internal/domain/model"
)

// eventBuffer holds one slot per phase so emission never blocks.
const eventBuffer = 3

// Run is one progressive match for a brief. Events delivers at most one
// event per phase in instant, refined, final order and is closed when the
// run ends, whether it completed, was cancelled or gave up on later phases.
type Run struct {
	ID       string
	BriefID  string
	ClientID string

	brief     model.Brief
	briefHash string
	started   time.Time
	now       func() time.Time

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	events  chan model.MatchEvent
	done    chan struct{}
	refined chan struct{}

	mu         sync.Mutex
	closed     bool
	canceled   bool
	last       model.Phase
	confidence model.Confidence
	ranking    []model.ScoredCandidate
	alternates int
	onFinish   func(*Run)

	refinedOnce sync.Once
}

func newRun(parent context.Context, id string, b *model.Brief, hash string, alternates int, now func() time.Time) *Run {
	ctx, cancel := context.WithCancel(parent)
	return &Run{
		ID:         id,
		BriefID:    b.ID,
		ClientID:   b.ClientID,
		brief:      *b,
		briefHash:  hash,
		started:    now(),
		now:        now,
		parent:     parent,
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan model.MatchEvent, eventBuffer),
		done:       make(chan struct{}),
		refined:    make(chan struct{}),
		alternates: alternates,
	}
}

// Events returns the run's event stream.
func (r *Run) Events() <-chan model.MatchEvent { return r.events }

// Done is closed once the run has ended.
func (r *Run) Done() <-chan struct{} { return r.done }

// Context is cancelled when the run ends.
func (r *Run) Context() context.Context { return r.ctx }

// Cancel stops the run. No event is emitted after Cancel returns.
func (r *Run) Cancel() {
	r.mu.Lock()
	if !r.closed {
		r.canceled = true
	}
	r.mu.Unlock()
	r.finish()
}

// Canceled reports whether the run ended through Cancel or because the
// caller's context ended first.
func (r *Run) Canceled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canceled
}

// LastPhase returns the most recently emitted phase, or "" before the
// first emission.
func (r *Run) LastPhase() model.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Ranking returns a copy of the freshest ranking.
func (r *Run) Ranking() []model.ScoredCandidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ScoredCandidate(nil), r.ranking...)
}

func (r *Run) setRanking(rk []model.ScoredCandidate) {
	r.mu.Lock()
	r.ranking = rk
	r.mu.Unlock()
}

// emit publishes the best of rk for phase. It refuses phases that are not
// strictly after the last one, confidence that would go down, and anything
// after the run has ended.
func (r *Run) emit(phase model.Phase, rk []model.ScoredCandidate) bool {
	if len(rk) == 0 {
		return false
	}
	conf := model.ConfidenceFor(phase)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.ctx.Err() != nil {
		return false
	}
	if phase.Rank() <= r.last.Rank() || conf.Rank() < r.confidence.Rank() {
		return false
	}

	n := r.alternates
	if n > len(rk)-1 {
		n = len(rk) - 1
	}
	now := r.now()
	ev := model.MatchEvent{
		RunID:      r.ID,
		BriefID:    r.BriefID,
		Phase:      phase,
		Best:       rk[0],
		Alternates: append([]model.ScoredCandidate{}, rk[1:1+n]...),
		Confidence: conf,
		Elapsed:    now.Sub(r.started),
		EmittedAt:  now,
	}
	select {
	case r.events <- ev:
	default:
		return false
	}
	r.last = phase
	r.confidence = conf
	r.ranking = rk
	return true
}

func (r *Run) markRefined() {
	r.refinedOnce.Do(func() { close(r.refined) })
}

// finish ends the run once: the context is cancelled, the stream closed and
// the owner notified. A run whose caller context is already done counts as
// cancelled.
func (r *Run) finish() {
	parentGone := r.parent.Err() != nil
	r.cancel()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if parentGone {
		r.canceled = true
	}
	cb := r.onFinish
	r.mu.Unlock()

	r.markRefined()
	if cb != nil {
		cb(r)
	}
	close(r.events)
	close(r.done)
}

// sortRanking orders by score descending, then candidate ID ascending.
func sortRanking(rk []model.ScoredCandidate) {
	sort.SliceStable(rk, func(i, j int) bool {
		if rk[i].Score != rk[j].Score {
			return rk[i].Score > rk[j].Score
		}
		return rk[i].Candidate.ID < rk[j].Candidate.ID
	})
}

func top(rk []model.ScoredCandidate, n int) []model.ScoredCandidate {
	if n > len(rk) {
		n = len(rk)
	}
	return rk[:n]
}

// merge replaces entries of base with updates by candidate ID and re-sorts
// into a new slice.
func merge(base []model.ScoredCandidate, updates map[string]model.ScoredCandidate) []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, len(base))
	for i, sc := range base {
		if u, ok := updates[sc.Candidate.ID]; ok {
			out[i] = u
			continue
		}
		out[i] = sc
	}
	sortRanking(out)
	return out
}
