// Package service wires the matching engine's components together and
// exposes the operations used by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/briefmatch/internal/adapters/candidates"
	eventqueue "github.com/okian/briefmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/briefmatch/internal/adapters/mq/worker"
	"github.com/okian/briefmatch/internal/adapters/remote"
	"github.com/okian/briefmatch/internal/adapters/repository"
	"github.com/okian/briefmatch/internal/config"
	"github.com/okian/briefmatch/internal/domain/cache"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/internal/domain/orchestrator"
	"github.com/okian/briefmatch/internal/domain/scoring"
	"github.com/okian/briefmatch/internal/domain/similarity"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

// Pool drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Sentinel errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrUnknownDriver = errors.New("unknown pool driver")
)

// Service owns the matching engine and its supporting infrastructure.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	logger logger.Logger

	// Injected or built on Start.
	pool     candidates.Pool
	remote   remote.Scorer
	embedder similarity.Embedder

	store    *repository.Store
	cache    *cache.Cache
	sim      *similarity.Service
	queue    *eventqueue.InMemoryQueue
	workers  *workerpool.Pool
	engine   *orchestrator.Orchestrator
	closers  []func()
	stopLoop context.CancelFunc
	loops    sync.WaitGroup

	started   bool
	startedAt time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults from config.New are used
// otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPool injects the candidate pool instead of building one from config.
func WithPool(p candidates.Pool) Option {
	return func(s *Service) { s.pool = p }
}

// WithRemote injects the remote scorer instead of building one from config.
func WithRemote(r remote.Scorer) Option {
	return func(s *Service) { s.remote = r }
}

// WithEmbedder injects the embedder instead of building one from config.
func WithEmbedder(e similarity.Embedder) Option {
	return func(s *Service) { s.embedder = e }
}

// New constructs a new Service. Components are built on Start.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts every component. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg
	s.logger.Info(ctx, "starting match service...")

	defer func() {
		if err != nil {
			s.closeAll()
		}
	}()

	if err := s.openStore(cfg); err != nil {
		return err
	}
	if err := s.buildPool(ctx, cfg); err != nil {
		return err
	}
	if err := s.buildSimilarity(cfg); err != nil {
		return err
	}
	if err := s.buildRemote(ctx, cfg); err != nil {
		return err
	}

	cacheOpts := []cache.Option{
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithShards(cfg.CacheShards),
		cache.WithTTLPolicy(cache.TTLPolicy{
			Instant: config.Ms(cfg.InstantTTLMS),
			Refined: config.Ms(cfg.RefinedTTLMS),
			Final:   config.Ms(cfg.FinalTTLMS),
		}),
		cache.WithLogger(s.logger.Named("cache")),
	}
	if s.store != nil {
		cacheOpts = append(cacheOpts, cache.WithDurable(s.store.Results()))
	}
	s.cache = cache.New(cacheOpts...)

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(cfg.QueueSize))
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	s.workers = workerpool.NewPool(workers, s.queue, s.logger.Named("worker"))

	s.engine = orchestrator.New(
		candidates.NewSource(s.pool, candidates.DefaultFilter()),
		scoring.NewEngine(),
		orchestrator.WithSimilarity(s.sim),
		orchestrator.WithRemote(s.remote),
		orchestrator.WithCache(s.cache),
		orchestrator.WithScheduler(s.workers),
		orchestrator.WithLogger(s.logger.Named("orchestrator")),
		orchestrator.WithPoolLimit(cfg.PoolLimit),
		orchestrator.WithAlternates(cfg.Alternates),
		orchestrator.WithTopN(cfg.RefinedTopN, cfg.FinalTopN),
		orchestrator.WithFinalDelay(config.Ms(cfg.FinalDelayMS)),
		orchestrator.WithInstantBlend(cfg.LocalWeight, cfg.EmbeddingWeight),
		orchestrator.WithRemoteWeight(cfg.RemoteWeight),
		orchestrator.WithConcurrency(cfg.ScoringConcurrency),
		orchestrator.WithCancelPrevious(cfg.CancelPrevious),
	)

	loopCtx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	s.workers.Start(loopCtx)
	if cfg.JanitorIntervalMS > 0 {
		s.loops.Add(1)
		go func() {
			defer s.loops.Done()
			s.cache.RunJanitor(loopCtx, config.Ms(cfg.JanitorIntervalMS))
		}()
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "match service started",
		logger.String("pool", cfg.PoolDriver),
		logger.String("remote", s.remote.Name()),
		logger.String("embedder", s.sim.Embedder().Name()),
		logger.Int("workers", workers),
		logger.Int("queueSize", s.queue.Capacity()),
		logger.Bool("durable", s.store != nil),
	)
	return nil
}

func (s *Service) openStore(cfg *config.Config) error {
	if cfg.CachePath == "" {
		return nil
	}
	st, err := repository.Open(cfg.CachePath)
	if err != nil {
		return err
	}
	s.store = st
	s.closers = append(s.closers, func() { _ = st.Close() })
	return nil
}

func (s *Service) buildPool(ctx context.Context, cfg *config.Config) error {
	if s.pool != nil {
		return nil
	}
	switch strings.ToLower(cfg.PoolDriver) {
	case "", DriverMemory:
		if cfg.PoolSeedFile == "" {
			s.pool = candidates.NewMemoryPool(nil)
			s.logger.Warn(ctx, "memory pool started without a seed file")
			return nil
		}
		p, err := candidates.LoadFile(cfg.PoolSeedFile)
		if err != nil {
			return err
		}
		s.logger.Info(ctx, "loaded candidate seed file",
			logger.String("path", cfg.PoolSeedFile),
			logger.Int("candidates", p.Len()))
		s.pool = p
	case DriverPostgres:
		p, err := candidates.NewPostgresPool(ctx, cfg.PoolDSN)
		if err != nil {
			return err
		}
		s.pool = p
		s.closers = append(s.closers, p.Close)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.PoolDriver)
	}
	return nil
}

func (s *Service) buildSimilarity(cfg *config.Config) error {
	if s.embedder == nil {
		e, err := remote.NewEmbedder(remote.EmbeddingSettings{
			Provider:   cfg.EmbeddingProvider,
			APIKey:     cfg.RemoteAPIKey,
			Model:      cfg.EmbeddingModel,
			BaseURL:    cfg.RemoteBaseURL,
			Dimensions: cfg.EmbeddingDims,
		})
		if err != nil {
			return err
		}
		s.embedder = e
	}
	opts := []similarity.Option{
		similarity.WithTimeout(config.Ms(cfg.EmbeddingTimeoutMS)),
		similarity.WithLogger(s.logger.Named("similarity")),
	}
	if s.store != nil {
		opts = append(opts, similarity.WithStore(s.store.Embeddings()))
	}
	s.sim = similarity.NewService(s.embedder, opts...)
	return nil
}

func (s *Service) buildRemote(ctx context.Context, cfg *config.Config) error {
	if s.remote != nil {
		return nil
	}
	r, err := remote.NewScorer(ctx, remote.Settings{
		Provider:     cfg.RemoteProvider,
		APIKey:       cfg.RemoteAPIKey,
		Model:        cfg.RemoteModel,
		BaseURL:      cfg.RemoteBaseURL,
		QuickTimeout: config.Ms(cfg.QuickTimeoutMS),
		DeepTimeout:  config.Ms(cfg.DeepTimeoutMS),
		RatePerSec:   cfg.RemoteRatePerSec,
		Burst:        cfg.RemoteBurst,
	}, s.logger.Named("remote"))
	if err != nil {
		return err
	}
	s.remote = r
	return nil
}

func (s *Service) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Stop cancels active runs, drains background work and closes storage.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping match service...")

	s.engine.Shutdown()
	err := s.workers.Shutdown(ctx)
	s.stopLoop()
	s.loops.Wait()
	s.closeAll()

	s.started = false
	s.logger.Info(ctx, "match service stopped")
	return err
}

func (s *Service) orchestrator() (*orchestrator.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.engine, nil
}

// Match starts a progressive run for b. The returned run's stream already
// holds the instant event.
func (s *Service) Match(ctx context.Context, b *model.Brief) (*orchestrator.Run, error) {
	o, err := s.orchestrator()
	if err != nil {
		return nil, err
	}
	return o.Start(ctx, b)
}

// Cancel stops an active run by ID.
func (s *Service) Cancel(_ context.Context, runID string) bool {
	o, err := s.orchestrator()
	if err != nil {
		return false
	}
	return o.Cancel(runID)
}

// Score returns the instant score and breakdown of one candidate for b.
func (s *Service) Score(ctx context.Context, c *model.Candidate, b *model.Brief) (model.ScoredCandidate, error) {
	o, err := s.orchestrator()
	if err != nil {
		return model.ScoredCandidate{}, err
	}
	return o.Explain(ctx, c, b), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	queueLen, cacheLen := s.refreshGauges()

	stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
	stats["workerCount"] = s.workers.Size()
	stats["queueLength"] = queueLen
	stats["queueCapacity"] = s.queue.Capacity()
	stats["cacheEntries"] = cacheLen
	stats["embedder"] = s.sim.Embedder().Name()
	stats["runs"] = s.engine.Stats()
	if mp, ok := s.pool.(*candidates.MemoryPool); ok {
		stats["poolSize"] = mp.Len()
	}
	return stats
}

// RefreshGauges pushes the current queue length and cache size to the
// metrics gauges. It is a no-op before Start.
func (s *Service) RefreshGauges() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.started {
		s.refreshGauges()
	}
}

// refreshGauges requires s.mu held.
func (s *Service) refreshGauges() (queueLen, cacheLen int) {
	queueLen = s.queue.Len(context.Background())
	cacheLen = s.cache.Len()
	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateCacheEntries(cacheLen)
	return queueLen, cacheLen
}

// Ready reports whether the service is started and its pool reachable.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	started, pool := s.started, s.pool
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	if p, ok := pool.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
