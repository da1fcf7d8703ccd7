// Package scoring computes deterministic 0..100 match scores from structured
// candidate and brief attributes.
package scoring

import (
	"github.com/okian/briefmatch/internal/domain/model"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBaseWeights replaces the base weight table. Negative weights are
// rejected; the table is renormalized per brief.
func WithBaseWeights(w Weights) Option {
	return func(e *Engine) {
		for _, v := range w {
			if v < 0 {
				return
			}
		}
		if w.Sum() > 0 {
			e.base = w
		}
	}
}

// WithClusters replaces the industry clustering.
func WithClusters(c Clusters) Option {
	return func(e *Engine) {
		if len(c) > 0 {
			e.clusters = c
		}
	}
}

// Breakdown holds one sub-score per factor.
type Breakdown [numFactors]float64

// Map returns the breakdown keyed by factor name.
func (b Breakdown) Map() map[string]float64 {
	out := make(map[string]float64, numFactors)
	for i, v := range b {
		out[Factor(i).String()] = v
	}
	return out
}

// Result contains the computed score for a candidate.
type Result struct {
	Total     float64
	Breakdown Breakdown
	Weights   Weights
}

// Scorer computes a local score. Implementations must be pure: identical
// inputs always yield identical output.
type Scorer interface {
	Score(c *model.Candidate, b *model.Brief) Result
}

// Engine is the default Scorer.
type Engine struct {
	base     Weights
	clusters Clusters
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		base:     DefaultWeights(),
		clusters: DefaultClusters(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the weighted total, the per-factor breakdown and the
// weights used.
func (e *Engine) Score(c *model.Candidate, b *model.Brief) Result {
	w := Derive(e.base, b)

	var sub Breakdown
	sub[FactorStyle] = styleScore(b.Styles, c.StyleTags)
	sub[FactorIndustry] = industryScore(b.Industry, c.IndustryTags, e.clusters)
	sub[FactorAvailability] = availabilityScore(c.Availability, b.UrgencyLevel())
	sub[FactorExperience] = experienceScore(c.YearsExperience, b.Complexity)
	sub[FactorProjectSize] = projectSizeScore(b.BudgetBucket(), c.SizePreference())
	sub[FactorSpecialization] = specializationScore(c.Specializations, b)
	sub[FactorPerformance] = performanceScore(c.Performance)
	sub[FactorSatisfaction] = satisfactionScore(c.Performance)
	sub[FactorDelivery] = deliveryScore(c.Performance)
	sub[FactorCommunication] = communicationScore(b.Communication, c.CommunicationStyle)
	sub[FactorTooling] = toolingScore(b.Tools, c.Tools)

	var total float64
	for i := range sub {
		total += w[i] * sub[i]
	}

	return Result{
		Total:     clamp(total),
		Breakdown: sub,
		Weights:   w,
	}
}
