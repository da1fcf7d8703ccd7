package model

import "strings"

// Timeline buckets a brief can declare.
const (
	TimelineASAP      = "asap"
	TimelineOneTwoWk  = "1-2 weeks"
	TimelineTwoFourWk = "2-4 weeks"
	TimelineOneThreeM = "1-3 months"
	TimelineFlexible  = "flexible"
)

// Complexity levels.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// defaultUrgency applies to missing or unrecognized timelines.
const defaultUrgency = 3

// Budget thresholds for the coarse budget buckets.
const (
	budgetSmallMax  = 5_000
	budgetMediumMax = 25_000
	budgetLargeMax  = 100_000
)

// Brief is a client's project request. Immutable for the duration of a run.
type Brief struct {
	ID                string   `json:"id" yaml:"id"`
	ClientID          string   `json:"client_id" yaml:"client_id"`
	ProjectType       string   `json:"project_type" yaml:"project_type"`
	Industry          string   `json:"industry" yaml:"industry"`
	Styles            []string `json:"styles" yaml:"styles"`
	Timeline          string   `json:"timeline" yaml:"timeline"`
	Budget            float64  `json:"budget" yaml:"budget"`
	Requirements      string   `json:"requirements,omitempty" yaml:"requirements"`
	Complexity        string   `json:"complexity,omitempty" yaml:"complexity"`
	Tools             []string `json:"tools,omitempty" yaml:"tools"`
	Communication     string   `json:"communication,omitempty" yaml:"communication"`
	ExcludeCandidates []string `json:"exclude_candidates,omitempty" yaml:"exclude_candidates"`
}

// NormalizedTimeline lowercases and canonicalizes the timeline bucket.
func (b *Brief) NormalizedTimeline() string {
	t := strings.ToLower(strings.TrimSpace(b.Timeline))
	t = strings.ReplaceAll(t, "–", "-")
	t = strings.Join(strings.Fields(t), " ")
	return t
}

// UrgencyLevel maps the timeline onto 1 (relaxed) .. 5 (immediate).
func (b *Brief) UrgencyLevel() int {
	switch b.NormalizedTimeline() {
	case TimelineASAP:
		return 5
	case TimelineOneTwoWk:
		return 4
	case TimelineTwoFourWk:
		return 3
	case TimelineOneThreeM:
		return 2
	case TimelineFlexible:
		return 1
	default:
		return defaultUrgency
	}
}

// IsUrgent reports whether the timeline is "asap" or "1-2 weeks".
func (b *Brief) IsUrgent() bool {
	t := b.NormalizedTimeline()
	return t == TimelineASAP || t == TimelineOneTwoWk
}

// IsComplex reports whether the brief declares complex work.
func (b *Brief) IsComplex() bool {
	return strings.EqualFold(strings.TrimSpace(b.Complexity), ComplexityComplex)
}

// BudgetBucket rounds the budget into a coarse size bucket. Non-positive
// budgets have no bucket.
func (b *Brief) BudgetBucket() ProjectSize {
	switch {
	case b.Budget <= 0:
		return ""
	case b.Budget < budgetSmallMax:
		return SizeSmall
	case b.Budget < budgetMediumMax:
		return SizeMedium
	case b.Budget < budgetLargeMax:
		return SizeLarge
	default:
		return SizeEnterprise
	}
}
