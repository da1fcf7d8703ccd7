package similarity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

func tags(in []string) string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

// CandidateText builds the text embedded for a candidate: normalized tags
// followed by free text.
func CandidateText(c *model.Candidate) string {
	return join(
		tags(c.StyleTags),
		tags(c.IndustryTags),
		tags(c.Specializations),
		tags(c.Tools),
		c.Bio,
	)
}

// BriefText builds the text embedded for a brief.
func BriefText(b *model.Brief) string {
	return join(
		tags(b.Styles),
		strings.ToLower(strings.TrimSpace(b.Industry)),
		strings.ToLower(strings.TrimSpace(b.ProjectType)),
		tags(b.Tools),
		b.Requirements,
	)
}

// ContentHash fingerprints the source text of an embedding.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
