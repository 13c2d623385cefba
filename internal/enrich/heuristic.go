package enrich

import (
	"context"
	"strings"
)

// Heuristic is the built-in enricher used when no external delegate is
// wired in. It scores a note from cheap structural signals: length,
// headings, and cross-references. Scores land in [0.1, 0.95] so the
// heuristic alone never fully clears or fully fails a strict gate.
type Heuristic struct{}

// NewHeuristic returns the built-in structural enricher.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Enrich scores body and suggests tags derived from section headings.
func (h *Heuristic) Enrich(_ context.Context, body string) (*Result, error) {
	words := len(strings.Fields(body))

	score := 0.1
	switch {
	case words >= 300:
		score += 0.5
	case words >= 100:
		score += 0.35
	case words >= 30:
		score += 0.2
	}
	if strings.HasPrefix(body, "## ") || strings.Contains(body, "\n## ") {
		score += 0.15
	}
	if strings.Contains(body, "[[") {
		score += 0.15
	}
	if score > 0.95 {
		score = 0.95
	}

	return &Result{
		SuggestedTags: headingTags(body, 5),
		QualityScore:  &score,
	}, nil
}

// headingTags turns up to max H2 headings into kebab-case tag suggestions.
func headingTags(body string, max int) []string {
	var tags []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "## ") {
			continue
		}
		tag := kebab(strings.TrimSpace(trimmed[3:]))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == max {
			break
		}
	}
	return tags
}

func kebab(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
