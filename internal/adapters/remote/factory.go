package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/internal/domain/similarity"
	"github.com/okian/briefmatch/pkg/logger"
)

// Provider names.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderHash      = "hash"
)

// Scorer is the remote scoring capability. Callers must check Available
// before relying on the other methods.
type Scorer interface {
	Available() bool
	Name() string
	QuickScore(ctx context.Context, b *model.Brief, cands []model.Candidate) (map[string]float64, error)
	DeepAnalyze(ctx context.Context, b *model.Brief, c *model.Candidate) (model.Analysis, error)
}

var (
	_ Scorer = Noop{}
	_ Scorer = (*LLMScorer)(nil)
)

// Settings selects and tunes the scoring provider.
type Settings struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	QuickTimeout time.Duration
	DeepTimeout  time.Duration
	RatePerSec   float64
	Burst        int
}

// NewGenerator builds the Generator for a provider name.
func NewGenerator(ctx context.Context, s Settings) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case ProviderOpenAI:
		return NewOpenAIGenerator(s.APIKey, s.Model, s.BaseURL)
	case ProviderGemini:
		return NewGeminiGenerator(ctx, s.APIKey, s.Model, s.BaseURL)
	case ProviderAnthropic:
		return NewAnthropicGenerator(s.APIKey, s.Model, s.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}

// NewScorer selects the scorer at composition time. An empty or "none"
// provider yields Noop.
func NewScorer(ctx context.Context, s Settings, log logger.Logger) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderNone:
		return Noop{}, nil
	}
	gen, err := NewGenerator(ctx, s)
	if err != nil {
		return nil, err
	}
	return NewLLMScorer(gen,
		WithQuickTimeout(s.QuickTimeout),
		WithDeepTimeout(s.DeepTimeout),
		WithRateLimit(s.RatePerSec, s.Burst),
		WithLogger(log),
	), nil
}

// EmbeddingSettings selects the embedder.
type EmbeddingSettings struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// NewEmbedder returns the local hash embedder or an OpenAI embedder.
func NewEmbedder(s EmbeddingSettings) (similarity.Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderHash:
		return similarity.NewHashEmbedder(s.Dimensions), nil
	case ProviderOpenAI:
		return NewOpenAIEmbedder(s.APIKey, s.Model, s.BaseURL, s.Dimensions)
	default:
		return nil, fmt.Errorf("%w: embedding %q", ErrUnknownProvider, s.Provider)
	}
}
