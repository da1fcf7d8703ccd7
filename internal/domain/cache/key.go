package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

// BriefHash fingerprints the brief attributes that influence scoring:
// sorted lowercase styles, industry, project type, timeline and budget
// bucket. Briefs that differ only in free text share a hash.
func BriefHash(b *model.Brief) string {
	styles := make([]string, 0, len(b.Styles))
	for _, s := range b.Styles {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			styles = append(styles, s)
		}
	}
	sort.Strings(styles)

	h := sha256.New()
	for _, part := range []string{
		strings.Join(styles, ","),
		strings.ToLower(strings.TrimSpace(b.Industry)),
		strings.ToLower(strings.TrimSpace(b.ProjectType)),
		b.NormalizedTimeline(),
		string(b.BudgetBucket()),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func entryKey(briefHash, candidateID string) string {
	return briefHash + "|" + candidateID
}
