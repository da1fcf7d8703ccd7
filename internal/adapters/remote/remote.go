// Package remote adapts hosted language models into the matcher's remote
// scoring and embedding capabilities.
package remote

import (
	"context"

	"github.com/okian/briefmatch/internal/domain/model"
)

// Generator sends one system+user prompt to a language model and returns
// its text reply.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Noop is the scorer used when no provider is configured. It reports itself
// unavailable so callers skip remote phases entirely.
type Noop struct{}

// Available reports false.
func (Noop) Available() bool { return false }

// Name identifies the scorer.
func (Noop) Name() string { return "none" }

// QuickScore always fails with ErrUnavailable.
func (Noop) QuickScore(context.Context, *model.Brief, []model.Candidate) (map[string]float64, error) {
	return nil, ErrUnavailable
}

// DeepAnalyze always fails with ErrUnavailable.
func (Noop) DeepAnalyze(context.Context, *model.Brief, *model.Candidate) (model.Analysis, error) {
	return model.Analysis{}, ErrUnavailable
}
