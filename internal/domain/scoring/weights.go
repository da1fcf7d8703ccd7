package scoring

import "github.com/okian/briefmatch/internal/domain/model"

// Factor identifies one sub-score.
type Factor int

// Factors in a fixed order; the order is part of the deterministic output.
const (
	FactorStyle Factor = iota
	FactorIndustry
	FactorAvailability
	FactorExperience
	FactorProjectSize
	FactorSpecialization
	FactorPerformance
	FactorSatisfaction
	FactorDelivery
	FactorCommunication
	FactorTooling
	numFactors
)

var factorNames = [numFactors]string{
	"style",
	"industry",
	"availability",
	"experience",
	"project_size",
	"specialization",
	"performance",
	"satisfaction",
	"delivery",
	"communication",
	"tooling",
}

// String returns the factor's breakdown key.
func (f Factor) String() string {
	if f < 0 || f >= numFactors {
		return "unknown"
	}
	return factorNames[f]
}

// Factors lists all factors in order.
func Factors() []Factor {
	out := make([]Factor, numFactors)
	for i := range out {
		out[i] = Factor(i)
	}
	return out
}

// Weights holds one weight per factor.
type Weights [numFactors]float64

// DefaultWeights is the base weight table. It sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		FactorStyle:          0.15,
		FactorIndustry:       0.12,
		FactorAvailability:   0.12,
		FactorExperience:     0.10,
		FactorProjectSize:    0.08,
		FactorSpecialization: 0.10,
		FactorPerformance:    0.10,
		FactorSatisfaction:   0.08,
		FactorDelivery:       0.07,
		FactorCommunication:  0.04,
		FactorTooling:        0.04,
	}
}

// Adjustment multipliers.
const (
	urgentBoost  = 1.5
	urgentDampen = 0.75
	complexBoost = 1.4
)

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Normalize rescales the weights to sum to 1. An all-zero table is returned
// unchanged.
func (w Weights) Normalize() Weights {
	s := w.Sum()
	if s <= 0 {
		return w
	}
	for i := range w {
		w[i] /= s
	}
	return w
}

// Map returns the weights keyed by factor name.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, numFactors)
	for i, v := range w {
		out[Factor(i).String()] = v
	}
	return out
}

// Derive adjusts base weights for the brief: urgent timelines favor
// availability and delivery over style and industry, complex work favors
// experience and specialization. The result always sums to 1.
func Derive(base Weights, b *model.Brief) Weights {
	w := base
	if b.IsUrgent() {
		w[FactorAvailability] *= urgentBoost
		w[FactorDelivery] *= urgentBoost
		w[FactorStyle] *= urgentDampen
		w[FactorIndustry] *= urgentDampen
	}
	if b.IsComplex() {
		w[FactorExperience] *= complexBoost
		w[FactorSpecialization] *= complexBoost
	}
	return w.Normalize()
}
