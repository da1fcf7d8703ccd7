package remote

import (
	"fmt"
	"strings"

	"github.com/okian/briefmatch/internal/domain/model"
)

const quickSystem = `You rank creative service providers against a client brief.
Reply with JSON only: {"scores":[{"id":"<candidate id>","score":<0-100>}]}.`

const deepSystem = `You assess how well one creative service provider fits a client brief.
Reply with JSON only: {"score":<0-100>,"confidence":"low|medium|high","explanation":"<two sentences>","strengths":["..."],"risks":["..."]}.`

func briefLine(b *model.Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type=%s; industry=%s; styles=%s; timeline=%s",
		b.ProjectType, b.Industry, strings.Join(b.Styles, ","), b.Timeline)
	if bucket := b.BudgetBucket(); bucket != "" {
		fmt.Fprintf(&sb, "; budget=%s", bucket)
	}
	if b.Complexity != "" {
		fmt.Fprintf(&sb, "; complexity=%s", b.Complexity)
	}
	if len(b.Tools) > 0 {
		fmt.Fprintf(&sb, "; tools=%s", strings.Join(b.Tools, ","))
	}
	return sb.String()
}

// candidateLine is the compact one-line description used in batched prompts.
func candidateLine(c *model.Candidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id=%s; styles=%s; industries=%s; availability=%s; years=%.0f",
		c.ID, strings.Join(c.StyleTags, ","), strings.Join(c.IndustryTags, ","), c.Availability, c.YearsExperience)
	if len(c.Specializations) > 0 {
		fmt.Fprintf(&sb, "; specializations=%s", strings.Join(c.Specializations, ","))
	}
	if p := c.Performance.OnTimeRate; p != nil {
		fmt.Fprintf(&sb, "; on_time=%.2f", *p)
	}
	if s := c.Performance.Satisfaction; s != nil {
		fmt.Fprintf(&sb, "; satisfaction=%.1f", *s)
	}
	return sb.String()
}

func quickPrompt(b *model.Brief, cands []model.Candidate) string {
	var sb strings.Builder
	sb.WriteString("Brief: ")
	sb.WriteString(briefLine(b))
	if r := strings.TrimSpace(b.Requirements); r != "" {
		sb.WriteString("\nRequirements: ")
		sb.WriteString(r)
	}
	sb.WriteString("\nCandidates:\n")
	for i := range cands {
		sb.WriteString("- ")
		sb.WriteString(candidateLine(&cands[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func deepPrompt(b *model.Brief, c *model.Candidate) string {
	var sb strings.Builder
	sb.WriteString("Brief: ")
	sb.WriteString(briefLine(b))
	if r := strings.TrimSpace(b.Requirements); r != "" {
		sb.WriteString("\nRequirements: ")
		sb.WriteString(r)
	}
	sb.WriteString("\nProvider: ")
	sb.WriteString(candidateLine(c))
	if bio := strings.TrimSpace(c.Bio); bio != "" {
		sb.WriteString("\nBio: ")
		sb.WriteString(bio)
	}
	return sb.String()
}
