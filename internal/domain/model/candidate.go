// Package model contains domain models passed between layers.
package model

import "strings"

// Availability is a provider's current capacity state.
type Availability string

// Availability states.
const (
	Available   Availability = "available"
	Busy        Availability = "busy"
	Unavailable Availability = "unavailable"
)

// ProjectSize is an ordinal project-size bucket shared by briefs and providers.
type ProjectSize string

// Project size buckets, smallest first.
const (
	SizeSmall      ProjectSize = "small"
	SizeMedium     ProjectSize = "medium"
	SizeLarge      ProjectSize = "large"
	SizeEnterprise ProjectSize = "enterprise"
)

// Ordinal returns the bucket's position on the size scale, or -1 when unknown.
func (s ProjectSize) Ordinal() int {
	switch ProjectSize(strings.ToLower(string(s))) {
	case SizeSmall:
		return 0
	case SizeMedium:
		return 1
	case SizeLarge:
		return 2
	case SizeEnterprise:
		return 3
	default:
		return -1
	}
}

// Performance holds optional operational metrics. Rates are fractions in
// [0,1]; Satisfaction is on a 0-5 scale. Nil means "not measured".
type Performance struct {
	CompletionRate  *float64 `json:"completion_rate,omitempty" yaml:"completion_rate"`
	OnTimeRate      *float64 `json:"on_time_rate,omitempty" yaml:"on_time_rate"`
	BudgetAdherence *float64 `json:"budget_adherence,omitempty" yaml:"budget_adherence"`
	RetentionRate   *float64 `json:"retention_rate,omitempty" yaml:"retention_rate"`
	Satisfaction    *float64 `json:"satisfaction,omitempty" yaml:"satisfaction"`
}

// Candidate is a service-provider profile. It is owned by the candidate pool
// and treated as immutable for the duration of a run.
type Candidate struct {
	ID                 string       `json:"id" yaml:"id"`
	Name               string       `json:"name" yaml:"name"`
	Approved           bool         `json:"approved" yaml:"approved"`
	Verified           bool         `json:"verified" yaml:"verified"`
	StyleTags          []string     `json:"style_tags" yaml:"style_tags"`
	IndustryTags       []string     `json:"industry_tags" yaml:"industry_tags"`
	Specializations    []string     `json:"specializations,omitempty" yaml:"specializations"`
	Tools              []string     `json:"tools,omitempty" yaml:"tools"`
	Availability       Availability `json:"availability" yaml:"availability"`
	YearsExperience    float64      `json:"years_experience" yaml:"years_experience"`
	TeamSize           int          `json:"team_size,omitempty" yaml:"team_size"`
	PreferredSize      ProjectSize  `json:"preferred_size,omitempty" yaml:"preferred_size"`
	CommunicationStyle string       `json:"communication_style,omitempty" yaml:"communication_style"`
	Bio                string       `json:"bio,omitempty" yaml:"bio"`
	Performance        Performance  `json:"performance" yaml:"performance"`
}

// SizePreference returns the preferred size bucket, deriving it from team
// size when not declared.
func (c *Candidate) SizePreference() ProjectSize {
	if c.PreferredSize.Ordinal() >= 0 {
		return ProjectSize(strings.ToLower(string(c.PreferredSize)))
	}
	switch {
	case c.TeamSize <= 0:
		return ""
	case c.TeamSize == 1:
		return SizeSmall
	case c.TeamSize <= 5:
		return SizeMedium
	case c.TeamSize <= 15:
		return SizeLarge
	default:
		return SizeEnterprise
	}
}
