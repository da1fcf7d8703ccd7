package scoring

import (
	"math"
	"strings"
	"unicode"

	"github.com/okian/briefmatch/internal/domain/model"
)

// Sub-score constants.
const (
	maxScore     = 100.0
	neutralScore = 50.0

	clusterScore     = 75.0
	fuzzyCredit      = 0.5
	busyFloor        = 30.0
	busyPenaltyStep  = 15.0
	belowMinCeiling  = 60.0
	satisfactionMax  = 5.0
	specSaturation   = 3
	minTokenLength   = 3
	commSameScore    = 100.0
	commHybridScore  = 75.0
	commOpposedScore = 40.0
)

// sizeDistanceScores maps ordinal size distance to a score.
var sizeDistanceScores = [...]float64{100, 70, 35, 0}

// band is a (minimum, optimal) years-of-experience band.
type band struct {
	min     float64
	optimal float64
}

// experienceBands are keyed by brief complexity.
var experienceBands = map[string]band{
	model.ComplexitySimple:   {min: 1, optimal: 3},
	model.ComplexityModerate: {min: 2, optimal: 5},
	model.ComplexityComplex:  {min: 5, optimal: 8},
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, v))
}

// styleScore credits each brief tag found exactly in the candidate's tags,
// and half credit for substring overlap when there is no exact match.
func styleScore(brief, candidate []string) float64 {
	want := normalizeAll(brief)
	have := normalizeAll(candidate)
	if len(want) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	var credit float64
	for _, w := range want {
		if _, ok := set[w]; ok {
			credit++
			continue
		}
		for _, h := range have {
			if strings.Contains(h, w) || strings.Contains(w, h) {
				credit += fuzzyCredit
				break
			}
		}
	}
	return clamp(credit / float64(len(want)) * maxScore)
}

func industryScore(brief string, candidate []string, clusters Clusters) float64 {
	want := normalize(brief)
	have := normalizeAll(candidate)
	if want == "" || len(have) == 0 {
		return 0
	}
	best := 0.0
	for _, h := range have {
		if h == want {
			return maxScore
		}
		if clusters.Same(h, want) {
			best = clusterScore
		}
	}
	return best
}

func availabilityScore(a model.Availability, urgency int) float64 {
	switch model.Availability(normalize(string(a))) {
	case model.Available:
		return maxScore
	case model.Busy:
		return math.Max(busyFloor, maxScore-float64(urgency)*busyPenaltyStep)
	case model.Unavailable:
		return 0
	default:
		return neutralScore
	}
}

// experienceScore is piecewise linear: 0..60 below the band minimum,
// 60..100 between minimum and optimal, 100 at or above optimal.
func experienceScore(years float64, complexity string) float64 {
	b, ok := experienceBands[normalize(complexity)]
	if !ok {
		b = experienceBands[model.ComplexityModerate]
	}
	switch {
	case years <= 0:
		return 0
	case years < b.min:
		return clamp(years / b.min * belowMinCeiling)
	case years < b.optimal:
		return clamp(belowMinCeiling + (years-b.min)/(b.optimal-b.min)*(maxScore-belowMinCeiling))
	default:
		return maxScore
	}
}

func projectSizeScore(brief, candidate model.ProjectSize) float64 {
	bo, co := brief.Ordinal(), candidate.Ordinal()
	if bo < 0 || co < 0 {
		return neutralScore
	}
	d := bo - co
	if d < 0 {
		d = -d
	}
	return sizeDistanceScores[d]
}

func tokenize(parts ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range parts {
		words := strings.FieldsFunc(strings.ToLower(p), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len(w) >= minTokenLength {
				out[w] = struct{}{}
			}
		}
	}
	return out
}

// specializationScore counts candidate specializations mentioned by the
// brief, saturating after a few matches.
func specializationScore(specs []string, b *model.Brief) float64 {
	have := normalizeAll(specs)
	if len(have) == 0 {
		return 0
	}
	text := normalize(b.ProjectType + " " + b.Requirements)
	tokens := tokenize(b.ProjectType, b.Requirements)
	matched := 0
	for _, s := range have {
		if _, ok := tokens[s]; ok || strings.Contains(text, s) {
			matched++
		}
	}
	denom := len(have)
	if denom > specSaturation {
		denom = specSaturation
	}
	return clamp(float64(matched) / float64(denom) * maxScore)
}

// performanceScore averages whichever metrics are present.
func performanceScore(p model.Performance) float64 {
	var sum float64
	n := 0
	for _, v := range []*float64{p.CompletionRate, p.OnTimeRate, p.BudgetAdherence, p.RetentionRate} {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return neutralScore
	}
	return clamp(sum / float64(n) * maxScore)
}

func satisfactionScore(p model.Performance) float64 {
	if p.Satisfaction == nil {
		return neutralScore
	}
	return clamp(*p.Satisfaction / satisfactionMax * maxScore)
}

func deliveryScore(p model.Performance) float64 {
	if p.OnTimeRate == nil {
		return neutralScore
	}
	return clamp(*p.OnTimeRate * maxScore)
}

// communicationScore looks up the compatibility of two styles among
// async, sync and hybrid.
func communicationScore(brief, candidate string) float64 {
	b, c := normalize(brief), normalize(candidate)
	if b == "" || c == "" {
		return neutralScore
	}
	if b == c {
		return commSameScore
	}
	if b == "hybrid" || c == "hybrid" {
		return commHybridScore
	}
	if (b == "async" && c == "sync") || (b == "sync" && c == "async") {
		return commOpposedScore
	}
	return neutralScore
}

// toolingScore is the fraction of required tools the candidate uses.
func toolingScore(brief, candidate []string) float64 {
	want := normalizeAll(brief)
	have := normalizeAll(candidate)
	if len(want) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	hits := 0
	for _, w := range want {
		if _, ok := set[w]; ok {
			hits++
		}
	}
	return clamp(float64(hits) / float64(len(want)) * maxScore)
}
