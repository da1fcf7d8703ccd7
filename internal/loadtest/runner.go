package loadtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
)

// Run executes a load test and returns its statistics. Violations are
// counted and also reported as an ErrViolation error.
func Run(ctx context.Context, config *Config, log logger.Logger) (Stats, error) {
	cfg := config.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	start := time.Now()

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("briefs", cfg.Briefs),
		logger.Int("workers", cfg.Workers),
		logger.Int("clients", cfg.Clients))

	client := newHTTPClient(cfg.Timeout)
	if err := client.checkHealth(ctx, cfg.BaseURL); err != nil {
		return Stats{}, err
	}

	var (
		mu      sync.Mutex
		stats   = Stats{Events: map[string]int{}, Latency: map[string]time.Duration{}}
		elapsed = map[string]time.Duration{}
	)
	record := func(evs []model.MatchEvent, err error) {
		mu.Lock()
		defer mu.Unlock()
		stats.Runs++
		switch {
		case err != nil:
			stats.Failed++
			return
		case evs == nil:
			stats.NoMatch++
			return
		}
		if verr := verifyRun(evs); verr != nil {
			stats.Violations++
			log.Warn(ctx, "stream violation", logger.String("run_id", evs[0].RunID), logger.Error(verr))
			return
		}
		stats.Completed++
		for _, ev := range evs {
			stats.Events[string(ev.Phase)]++
			elapsed[string(ev.Phase)] += ev.Elapsed
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, b := range generateBriefs(cfg) {
		g.Go(func() error {
			evs, err := client.streamMatch(gctx, cfg.BaseURL, b)
			if err != nil {
				log.Debug(gctx, "match failed", logger.String("brief_id", b.ID), logger.Error(err))
			}
			record(evs, err)
			return nil
		})
	}
	_ = g.Wait()

	for phase, total := range elapsed {
		stats.Latency[phase] = total / time.Duration(stats.Events[phase])
	}
	stats.Duration = time.Since(start)

	log.Info(ctx, "load test finished",
		logger.Int("runs", stats.Runs),
		logger.Int("completed", stats.Completed),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Any("events", stats.Events),
		logger.Duration("duration", stats.Duration))

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d runs", ErrViolation, stats.Violations)
	}
	return stats, ctx.Err()
}
