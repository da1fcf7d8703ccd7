package similarity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
	"github.com/okian/briefmatch/pkg/metrics"
)

// NeutralScore is returned when similarity cannot be computed.
const NeutralScore = 50.0

const defaultEmbedTimeout = 2 * time.Second

// Service computes embedding similarity between candidates and briefs.
// Candidate vectors are persisted and reused while their source text is
// unchanged; brief vectors are never persisted.
type Service struct {
	embedder Embedder
	store    Store
	log      logger.Logger
	timeout  time.Duration
	group    singleflight.Group
}

// NewService creates a similarity service over an embedder.
func NewService(e Embedder, opts ...Option) *Service {
	s := &Service{
		embedder: e,
		store:    NewMemoryStore(),
		log:      logger.Nop(),
		timeout:  defaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embedder returns the underlying embedder.
func (s *Service) Embedder() Embedder { return s.embedder }

func (s *Service) embed(ctx context.Context, text string) (Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", s.embedder.Name(), err)
	}
	if len(v) != s.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: got %d want %d", ErrDimensionMismatch, len(v), s.embedder.Dimensions())
	}
	return v, nil
}

// CandidateVector returns the candidate's embedding, regenerating and
// persisting it when the stored one is missing or stale.
func (s *Service) CandidateVector(ctx context.Context, c *model.Candidate) (Vector, error) {
	text := CandidateText(c)
	if text == "" {
		return nil, ErrEmptyText
	}
	hash := ContentHash(text)

	stored, err := s.store.Get(ctx, c.ID)
	switch {
	case err == nil:
		if stored.Hash == hash && stored.Model == s.embedder.Name() && len(stored.Vector) == s.embedder.Dimensions() {
			return stored.Vector, nil
		}
	case errors.Is(err, ErrNotFound):
	default:
		metrics.RecordEmbeddingStoreError()
		s.log.Warn(ctx, "embedding lookup failed", logger.String("candidate_id", c.ID), logger.Error(err))
	}

	v, err := s.shared(ctx, "c:"+c.ID+":"+hash, func(ctx context.Context) (Vector, error) {
		v, err := s.embed(ctx, text)
		if err != nil {
			return nil, err
		}
		metrics.RecordEmbeddingRegenerated()
		if perr := s.store.Put(ctx, StoredEmbedding{
			CandidateID: c.ID,
			Vector:      v,
			Hash:        hash,
			Model:       s.embedder.Name(),
			UpdatedAt:   time.Now().UTC(),
		}); perr != nil {
			metrics.RecordEmbeddingStoreError()
			s.log.Warn(ctx, "embedding persist failed", logger.String("candidate_id", c.ID), logger.Error(perr))
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// BriefVector embeds a brief.
func (s *Service) BriefVector(ctx context.Context, b *model.Brief) (Vector, error) {
	text := BriefText(b)
	if text == "" {
		return nil, ErrEmptyText
	}
	return s.shared(ctx, "b:"+ContentHash(text), func(ctx context.Context) (Vector, error) {
		return s.embed(ctx, text)
	})
}

// shared runs fn once per key across concurrent callers. fn gets a context
// that outlives any single caller, bounded only by the embed timeout; each
// caller stops waiting when its own ctx ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (Vector, error)) (Vector, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Vector), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Score returns the candidate/brief similarity on a 0..100 scale. Any
// embedding failure yields NeutralScore.
func (s *Service) Score(ctx context.Context, c *model.Candidate, b *model.Brief) float64 {
	bv, err := s.BriefVector(ctx, b)
	if err != nil {
		return s.fallback(ctx, "brief", b.ID, err)
	}
	cv, err := s.CandidateVector(ctx, c)
	if err != nil {
		return s.fallback(ctx, "candidate", c.ID, err)
	}
	return Cosine(cv, bv) * 100
}

func (s *Service) fallback(ctx context.Context, kind, id string, err error) float64 {
	metrics.RecordEmbeddingFallback()
	s.log.Debug(ctx, "similarity fallback to neutral",
		logger.String("entity", kind),
		logger.String("id", id),
		logger.Error(err),
	)
	return NeutralScore
}
