package model

import "time"

// Phase tags a scoring pass.
type Phase string

// Phases in emission order.
const (
	PhaseInstant Phase = "instant"
	PhaseRefined Phase = "refined"
	PhaseFinal   Phase = "final"
)

// Rank returns the phase's position in the pipeline, or -1 when unknown.
func (p Phase) Rank() int {
	switch p {
	case PhaseInstant:
		return 0
	case PhaseRefined:
		return 1
	case PhaseFinal:
		return 2
	default:
		return -1
	}
}

// Confidence is a coarse label for how much work backs a result.
type Confidence string

// Confidence levels, lowest first.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence levels; unknown labels rank below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	default:
		return -1
	}
}

// ConfidenceFor returns the confidence attached to a phase's emission.
func ConfidenceFor(p Phase) Confidence {
	switch p {
	case PhaseRefined:
		return ConfidenceMedium
	case PhaseFinal:
		return ConfidenceHigh
	default:
		return ConfidenceLow
	}
}

// ScoredCandidate is the result of one scoring pass over a candidate. Later
// phases produce new values rather than mutating earlier ones.
type ScoredCandidate struct {
	Candidate      Candidate          `json:"candidate"`
	Score          float64            `json:"score"`
	LocalScore     float64            `json:"local_score"`
	EmbeddingScore float64            `json:"embedding_score"`
	RemoteScore    *float64           `json:"remote_score,omitempty"`
	Breakdown      map[string]float64 `json:"breakdown,omitempty"`
	Weights        map[string]float64 `json:"weights,omitempty"`
	Phase          Phase              `json:"phase"`
	Confidence     Confidence         `json:"confidence,omitempty"`
	Explanation    string             `json:"explanation,omitempty"`
	Strengths      []string           `json:"strengths,omitempty"`
	Risks          []string           `json:"risks,omitempty"`
	ScoredAt       time.Time          `json:"scored_at"`
}

// MatchEvent is the engine's only output: the current best candidate for a
// run, tagged with the phase that produced it.
type MatchEvent struct {
	RunID      string            `json:"run_id"`
	BriefID    string            `json:"brief_id,omitempty"`
	Phase      Phase             `json:"phase"`
	Best       ScoredCandidate   `json:"best"`
	Alternates []ScoredCandidate `json:"alternates"`
	Confidence Confidence        `json:"confidence"`
	Elapsed    time.Duration     `json:"elapsed"`
	EmittedAt  time.Time         `json:"emitted_at"`
}

// Analysis is a remote deep-analysis verdict for one candidate.
type Analysis struct {
	Score       float64    `json:"score"`
	Confidence  Confidence `json:"confidence"`
	Explanation string     `json:"explanation"`
	Strengths   []string   `json:"strengths"`
	Risks       []string   `json:"risks"`
}
