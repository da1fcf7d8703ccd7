package loadtest

import (
	"fmt"

	"github.com/okian/briefmatch/internal/domain/model"
)

// verifyRun checks one run's events: instant comes first, phases strictly
// advance, confidence never drops, every event names the same run and the
// best candidate is never also listed as an alternate.
func verifyRun(evs []model.MatchEvent) error {
	if len(evs) == 0 {
		return fmt.Errorf("%w: no events", ErrViolation)
	}
	if evs[0].Phase != model.PhaseInstant {
		return fmt.Errorf("%w: first event is %s", ErrViolation, evs[0].Phase)
	}
	for i, ev := range evs {
		if ev.RunID != evs[0].RunID {
			return fmt.Errorf("%w: event %d belongs to run %s", ErrViolation, i, ev.RunID)
		}
		if ev.Confidence != model.ConfidenceFor(ev.Phase) {
			return fmt.Errorf("%w: %s event carries %s confidence", ErrViolation, ev.Phase, ev.Confidence)
		}
		for _, alt := range ev.Alternates {
			if alt.Candidate.ID == ev.Best.Candidate.ID {
				return fmt.Errorf("%w: best %s repeated as alternate", ErrViolation, alt.Candidate.ID)
			}
			if alt.Score > ev.Best.Score {
				return fmt.Errorf("%w: alternate %s outscores best", ErrViolation, alt.Candidate.ID)
			}
		}
		if i == 0 {
			continue
		}
		prev := evs[i-1]
		if ev.Phase.Rank() <= prev.Phase.Rank() {
			return fmt.Errorf("%w: %s after %s", ErrViolation, ev.Phase, prev.Phase)
		}
		if ev.Confidence.Rank() < prev.Confidence.Rank() {
			return fmt.Errorf("%w: confidence dropped from %s to %s", ErrViolation, prev.Confidence, ev.Confidence)
		}
	}
	return nil
}
