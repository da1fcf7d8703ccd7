package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/briefmatch/internal/domain/model"
)

var (
	projectTypes = []string{"brand identity", "landing page", "mobile app", "packaging", "illustration", "pitch deck"}
	industries   = []string{"saas", "fintech", "retail", "healthcare", "gaming", "education", "travel"}
	styles       = []string{"minimal", "modern", "bold", "playful", "corporate", "retro", "organic"}
	timelines    = []string{"asap", "1-2 weeks", "2-4 weeks", "1-3 months", "flexible"}
	complexities = []string{"simple", "moderate", "complex"}
	comms        = []string{"async", "sync", "hybrid", ""}
)

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// generateBriefs builds n varied briefs spread across clients.
func generateBriefs(cfg Config) []model.Brief {
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := make([]model.Brief, cfg.Briefs)
	for i := range out {
		n := 1 + r.IntN(3)
		st := make([]string, 0, n)
		for j := 0; j < n; j++ {
			st = append(st, pick(r, styles))
		}
		out[i] = model.Brief{
			ID:            uuid.NewString(),
			ClientID:      fmt.Sprintf("loadtest-%d", i%cfg.Clients),
			ProjectType:   pick(r, projectTypes),
			Industry:      pick(r, industries),
			Styles:        st,
			Timeline:      pick(r, timelines),
			Budget:        float64(1_000 + r.IntN(120_000)),
			Complexity:    pick(r, complexities),
			Communication: pick(r, comms),
		}
	}
	return out
}
