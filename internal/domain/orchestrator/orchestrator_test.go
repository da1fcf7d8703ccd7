package orchestrator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/internal/domain/orchestrator"
	"github.com/okian/briefmatch/internal/domain/scoring"
)

type fakeSource struct {
	cands []model.Candidate
	err   error
}

func (f *fakeSource) ForBrief(_ context.Context, _ *model.Brief, limit int) ([]model.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := append([]model.Candidate(nil), f.cands...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fixedLocal scores by candidate ID.
type fixedLocal struct {
	totals map[string]float64
	calls  atomic.Int64
}

func (f *fixedLocal) Score(c *model.Candidate, _ *model.Brief) scoring.Result {
	f.calls.Add(1)
	return scoring.Result{Total: f.totals[c.ID]}
}

type fakeRemote struct {
	available bool
	quick     func(ctx context.Context, cands []model.Candidate) (map[string]float64, error)
	deep      func(ctx context.Context, c *model.Candidate) (model.Analysis, error)
}

func (f *fakeRemote) Available() bool { return f.available }
func (f *fakeRemote) Name() string    { return "fake" }
func (f *fakeRemote) QuickScore(ctx context.Context, _ *model.Brief, cands []model.Candidate) (map[string]float64, error) {
	return f.quick(ctx, cands)
}
func (f *fakeRemote) DeepAnalyze(ctx context.Context, _ *model.Brief, c *model.Candidate) (model.Analysis, error) {
	return f.deep(ctx, c)
}

type rejectingScheduler struct{}

func (rejectingScheduler) Schedule(context.Context, string, string, func(context.Context)) bool {
	return false
}

var errRemote = errors.New("remote down")

func pool() *fakeSource {
	return &fakeSource{cands: []model.Candidate{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}}
}

func local() *fixedLocal {
	return &fixedLocal{totals: map[string]float64{"a": 90, "b": 80, "c": 70, "d": 60, "e": 50}}
}

func collect(r *orchestrator.Run) []model.MatchEvent {
	var out []model.MatchEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-r.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			return out
		}
	}
}

func closed(r *orchestrator.Run) bool {
	select {
	case <-r.Done():
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func phases(evs []model.MatchEvent) []model.Phase {
	out := make([]model.Phase, len(evs))
	for i, ev := range evs {
		out[i] = ev.Phase
	}
	return out
}

func TestInstantOnly(t *testing.T) {
	Convey("Given an orchestrator without remote scoring", t, func() {
		ctx := context.Background()
		o := orchestrator.New(pool(), local())

		Convey("When a run starts", func() {
			r, err := o.Start(ctx, &model.Brief{ID: "brief-1"})
			So(err, ShouldBeNil)
			evs := collect(r)

			Convey("Then exactly one low-confidence instant event is delivered and the stream closes", func() {
				So(phases(evs), ShouldResemble, []model.Phase{model.PhaseInstant})
				ev := evs[0]
				So(ev.Confidence, ShouldEqual, model.ConfidenceLow)
				So(ev.RunID, ShouldEqual, r.ID)
				So(ev.BriefID, ShouldEqual, "brief-1")
				So(closed(r), ShouldBeTrue)
			})

			Convey("Then the best and three alternates follow the blended ranking", func() {
				ev := evs[0]
				So(ev.Best.Candidate.ID, ShouldEqual, "a")
				So(ev.Best.Score, ShouldAlmostEqual, 0.7*90+0.3*50)
				So(ev.Best.EmbeddingScore, ShouldEqual, 50)
				So(len(ev.Alternates), ShouldEqual, 3)
				So(ev.Alternates[0].Candidate.ID, ShouldEqual, "b")
				So(ev.Alternates[2].Candidate.ID, ShouldEqual, "d")
			})

			Convey("Then both later phases are counted as skipped", func() {
				st := o.Stats()
				So(st.RunsStarted, ShouldEqual, 1)
				So(st.Instant, ShouldEqual, 1)
				So(st.Skipped, ShouldEqual, 2)
				So(st.Remote, ShouldEqual, "none")
			})
		})

		Convey("When candidates tie", func() {
			tied := &fixedLocal{totals: map[string]float64{"b": 40, "a": 40, "c": 40}}
			o := orchestrator.New(&fakeSource{cands: []model.Candidate{{ID: "c"}, {ID: "b"}, {ID: "a"}}}, tied)
			r, err := o.Start(ctx, &model.Brief{})
			So(err, ShouldBeNil)
			evs := collect(r)

			Convey("Then they are ordered by candidate id", func() {
				So(evs[0].Best.Candidate.ID, ShouldEqual, "a")
				So(evs[0].Alternates[0].Candidate.ID, ShouldEqual, "b")
				So(evs[0].Alternates[1].Candidate.ID, ShouldEqual, "c")
			})
		})

		Convey("When fewer alternates are configured", func() {
			o := orchestrator.New(pool(), local(), orchestrator.WithAlternates(1))
			r, _ := o.Start(ctx, &model.Brief{})
			evs := collect(r)

			Convey("Then only that many are attached", func() {
				So(len(evs[0].Alternates), ShouldEqual, 1)
			})
		})
	})
}

func TestStartErrors(t *testing.T) {
	Convey("Given pools that cannot produce a match", t, func() {
		ctx := context.Background()

		Convey("When the pool is empty", func() {
			o := orchestrator.New(&fakeSource{}, local())
			_, err := o.Start(ctx, &model.Brief{})

			Convey("Then ErrNoMatch is returned", func() {
				So(errors.Is(err, orchestrator.ErrNoMatch), ShouldBeTrue)
				So(o.Stats().RunsFailed, ShouldEqual, 1)
			})
		})

		Convey("When the pool query fails", func() {
			boom := errors.New("db down")
			o := orchestrator.New(&fakeSource{err: boom}, local())
			_, err := o.Start(ctx, &model.Brief{})

			Convey("Then both the sentinel and the cause are reported", func() {
				So(errors.Is(err, orchestrator.ErrNoMatch), ShouldBeTrue)
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When no brief is given", func() {
			o := orchestrator.New(pool(), local())
			_, err := o.Start(ctx, nil)

			Convey("Then ErrNilBrief is returned", func() {
				So(errors.Is(err, orchestrator.ErrNilBrief), ShouldBeTrue)
			})
		})

		Convey("When the caller context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			o := orchestrator.New(pool(), local())
			_, err := o.Start(cctx, &model.Brief{})

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestProgressivePhases(t *testing.T) {
	Convey("Given a remote scorer that favors a weak local candidate", t, func() {
		ctx := context.Background()
		remote := &fakeRemote{
			available: true,
			quick: func(_ context.Context, _ []model.Candidate) (map[string]float64, error) {
				return map[string]float64{"e": 100, "a": 10, "ghost": 100}, nil
			},
			deep: func(_ context.Context, c *model.Candidate) (model.Analysis, error) {
				if c.ID == "b" {
					return model.Analysis{Score: 95, Confidence: model.ConfidenceHigh, Explanation: "strong fit"}, nil
				}
				return model.Analysis{}, errRemote
			},
		}
		o := orchestrator.New(pool(), local(),
			orchestrator.WithRemote(remote),
			orchestrator.WithFinalDelay(10*time.Millisecond))

		Convey("When a run completes", func() {
			r, err := o.Start(ctx, &model.Brief{ID: "b1"})
			So(err, ShouldBeNil)
			evs := collect(r)

			Convey("Then instant, refined and final arrive in order with rising confidence", func() {
				So(phases(evs), ShouldResemble, []model.Phase{model.PhaseInstant, model.PhaseRefined, model.PhaseFinal})
				So(evs[0].Confidence, ShouldEqual, model.ConfidenceLow)
				So(evs[1].Confidence, ShouldEqual, model.ConfidenceMedium)
				So(evs[2].Confidence, ShouldEqual, model.ConfidenceHigh)
				So(closed(r), ShouldBeTrue)
			})

			Convey("Then the refined phase blends remote scores into the ranking", func() {
				best := evs[1].Best
				So(best.Candidate.ID, ShouldEqual, "e")
				So(*best.RemoteScore, ShouldEqual, 100)
				So(best.Score, ShouldAlmostEqual, 0.3*(0.7*50+0.3*50)+0.7*100)
				So(best.Phase, ShouldEqual, model.PhaseRefined)
			})

			Convey("Then the final phase keeps prior results where analysis failed", func() {
				best := evs[2].Best
				So(best.Candidate.ID, ShouldEqual, "b")
				So(best.Score, ShouldEqual, 95)
				So(best.Explanation, ShouldEqual, "strong fit")
				for _, alt := range evs[2].Alternates {
					So(alt.Phase, ShouldNotEqual, model.PhaseFinal)
				}
			})

			Convey("Then every phase is counted", func() {
				st := o.Stats()
				So(st.Instant, ShouldEqual, 1)
				So(st.Refined, ShouldEqual, 1)
				So(st.Final, ShouldEqual, 1)
				So(st.RunsActive, ShouldEqual, 0)
			})
		})
	})
}

func TestDegradation(t *testing.T) {
	Convey("Given a remote scorer that always fails", t, func() {
		ctx := context.Background()
		remote := &fakeRemote{
			available: true,
			quick: func(context.Context, []model.Candidate) (map[string]float64, error) {
				return nil, errRemote
			},
			deep: func(context.Context, *model.Candidate) (model.Analysis, error) {
				return model.Analysis{}, errRemote
			},
		}
		o := orchestrator.New(pool(), local(),
			orchestrator.WithRemote(remote),
			orchestrator.WithFinalDelay(5*time.Millisecond))

		Convey("When a run starts", func() {
			r, err := o.Start(ctx, &model.Brief{})
			So(err, ShouldBeNil)
			evs := collect(r)

			Convey("Then only the instant event is delivered and the stream closes", func() {
				So(phases(evs), ShouldResemble, []model.Phase{model.PhaseInstant})
				So(evs[0].Confidence, ShouldEqual, model.ConfidenceLow)
				So(closed(r), ShouldBeTrue)
				So(o.Stats().Skipped, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a scheduler with no room", t, func() {
		remote := &fakeRemote{available: true}
		o := orchestrator.New(pool(), local(),
			orchestrator.WithRemote(remote),
			orchestrator.WithScheduler(rejectingScheduler{}))

		Convey("When a run starts", func() {
			r, err := o.Start(context.Background(), &model.Brief{})
			So(err, ShouldBeNil)
			evs := collect(r)

			Convey("Then later phases are skipped", func() {
				So(phases(evs), ShouldResemble, []model.Phase{model.PhaseInstant})
				So(closed(r), ShouldBeTrue)
			})
		})
	})
}

func blockingRemote() *fakeRemote {
	return &fakeRemote{
		available: true,
		quick: func(ctx context.Context, _ []model.Candidate) (map[string]float64, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		deep: func(ctx context.Context, _ *model.Candidate) (model.Analysis, error) {
			<-ctx.Done()
			return model.Analysis{}, ctx.Err()
		},
	}
}

func TestCancellation(t *testing.T) {
	Convey("Given runs whose remote calls never return on their own", t, func() {
		ctx := context.Background()
		o := orchestrator.New(pool(), local(),
			orchestrator.WithRemote(blockingRemote()),
			orchestrator.WithFinalDelay(5*time.Millisecond))

		Convey("When a run is cancelled after the instant event", func() {
			r, err := o.Start(ctx, &model.Brief{})
			So(err, ShouldBeNil)
			first := <-r.Events()
			r.Cancel()
			rest := collect(r)

			Convey("Then nothing further is emitted and the stream closes", func() {
				So(first.Phase, ShouldEqual, model.PhaseInstant)
				So(rest, ShouldBeEmpty)
				So(closed(r), ShouldBeTrue)
				So(r.Canceled(), ShouldBeTrue)
				So(r.LastPhase(), ShouldEqual, model.PhaseInstant)
			})
		})

		Convey("When a run is cancelled by id", func() {
			r, _ := o.Start(ctx, &model.Brief{})

			Convey("Then it ends and unknown ids are rejected", func() {
				So(o.Cancel(r.ID), ShouldBeTrue)
				So(closed(r), ShouldBeTrue)
				So(o.Cancel("missing"), ShouldBeFalse)
			})
		})

		Convey("When the caller's context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			r, _ := o.Start(cctx, &model.Brief{})
			cancel()

			Convey("Then the run ends and is counted as cancelled", func() {
				So(closed(r), ShouldBeTrue)
				So(r.Canceled(), ShouldBeTrue)
				So(o.Stats().RunsCanceled, ShouldEqual, 1)
				So(o.Stats().RunsActive, ShouldEqual, 0)
			})
		})

		Convey("When the same client starts a second run", func() {
			first, _ := o.Start(ctx, &model.Brief{ClientID: "client-1"})
			second, _ := o.Start(ctx, &model.Brief{ClientID: "client-1"})
			Reset(second.Cancel)

			Convey("Then the earlier run is cancelled", func() {
				So(closed(first), ShouldBeTrue)
				So(first.Canceled(), ShouldBeTrue)
				So(second.Canceled(), ShouldBeFalse)
			})
		})

		Convey("When superseding is disabled", func() {
			o := orchestrator.New(pool(), local(),
				orchestrator.WithRemote(blockingRemote()),
				orchestrator.WithCancelPrevious(false))
			first, _ := o.Start(ctx, &model.Brief{ClientID: "client-1"})
			second, _ := o.Start(ctx, &model.Brief{ClientID: "client-1"})

			Convey("Then both runs stay active until shutdown", func() {
				So(first.Canceled(), ShouldBeFalse)
				So(o.Stats().RunsActive, ShouldEqual, 2)
				o.Shutdown()
				So(closed(first), ShouldBeTrue)
				So(closed(second), ShouldBeTrue)
			})
		})
	})
}

func TestCacheReuse(t *testing.T) {
	Convey("Given an orchestrator with a result cache", t, func() {
		ctx := context.Background()
		scorer := local()
		c := cache.New()
		o := orchestrator.New(pool(), scorer, orchestrator.WithCache(c))
		brief := &model.Brief{Industry: "saas", Styles: []string{"minimal"}}

		Convey("When the same brief is matched twice", func() {
			r1, err := o.Start(ctx, brief)
			So(err, ShouldBeNil)
			first := collect(r1)
			calls := scorer.calls.Load()
			r2, err := o.Start(ctx, &model.Brief{Industry: "SaaS", Styles: []string{"Minimal"}})
			So(err, ShouldBeNil)
			second := collect(r2)

			Convey("Then the second run is served from cache with the same ranking", func() {
				So(calls, ShouldEqual, 5)
				So(scorer.calls.Load(), ShouldEqual, 5)
				So(second[0].Best.Candidate.ID, ShouldEqual, first[0].Best.Candidate.ID)
				So(second[0].Best.Score, ShouldEqual, first[0].Best.Score)
				So(c.Len(), ShouldEqual, 5)
			})
		})

		Convey("When a full three-phase run warms the cache first", func() {
			remote := &fakeRemote{
				available: true,
				quick: func(_ context.Context, _ []model.Candidate) (map[string]float64, error) {
					return map[string]float64{"a": 100, "b": 100, "c": 100, "d": 100, "e": 100}, nil
				},
				deep: func(context.Context, *model.Candidate) (model.Analysis, error) {
					return model.Analysis{
						Score:       99,
						Confidence:  model.ConfidenceHigh,
						Explanation: "deep fit",
						Strengths:   []string{"portfolio"},
						Risks:       []string{"timeline"},
					}, nil
				},
			}
			o := orchestrator.New(pool(), local(),
				orchestrator.WithCache(c),
				orchestrator.WithRemote(remote),
				orchestrator.WithFinalDelay(time.Millisecond))
			r1, err := o.Start(ctx, brief)
			So(err, ShouldBeNil)
			first := collect(r1)
			So(phases(first), ShouldResemble, []model.Phase{model.PhaseInstant, model.PhaseRefined, model.PhaseFinal})

			r2, err := o.Start(ctx, brief)
			So(err, ShouldBeNil)
			second := collect(r2)

			Convey("Then the second instant event is rebuilt from the local and embedding parts", func() {
				ev := second[0]
				So(ev.Phase, ShouldEqual, model.PhaseInstant)
				So(ev.Confidence, ShouldEqual, model.ConfidenceLow)
				So(ev.Best.Candidate.ID, ShouldEqual, "a")
				So(ev.Best.Score, ShouldAlmostEqual, 0.7*90+0.3*50)
				for _, sc := range append([]model.ScoredCandidate{ev.Best}, ev.Alternates...) {
					So(sc.Phase, ShouldEqual, model.PhaseInstant)
					So(sc.Confidence, ShouldEqual, model.ConfidenceLow)
					So(sc.RemoteScore, ShouldBeNil)
					So(sc.Explanation, ShouldBeEmpty)
					So(sc.Strengths, ShouldBeEmpty)
					So(sc.Risks, ShouldBeEmpty)
				}
			})
		})
	})
}

func TestExplain(t *testing.T) {
	Convey("Given an orchestrator with the real scoring engine", t, func() {
		o := orchestrator.New(pool(), scoring.NewEngine(),
			orchestrator.WithInstantBlend(1, 0))

		Convey("When a single candidate is explained", func() {
			c := &model.Candidate{ID: "x", IndustryTags: []string{"SaaS"}, Availability: model.Available}
			sc := o.Explain(context.Background(), c, &model.Brief{Industry: "saas"})

			Convey("Then the score equals the local total and carries a breakdown", func() {
				So(sc.Score, ShouldAlmostEqual, sc.LocalScore)
				So(sc.Breakdown["industry"], ShouldEqual, 100)
				So(sc.Phase, ShouldEqual, model.PhaseInstant)
			})
		})
	})
}
