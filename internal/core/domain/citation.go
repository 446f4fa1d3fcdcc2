package domain

import (
	"strings"
	"unicode/utf8"
)

// DefaultExcerptLength is the annotation length limit for citation excerpts.
const DefaultExcerptLength = 200

// Citation is a regulatory passage offered as evidence for a finding.
type Citation struct {
	// SourceID identifies the regulatory source.
	SourceID string

	// Excerpt is the passage text.
	Excerpt string

	// Score is the normalised relevance in [0,1]; higher is more relevant.
	Score float64
}

// FilterCitations returns the citations scoring at least minScore, preserving order.
// Below-threshold citations are dropped rather than replaced.
func FilterCitations(citations []Citation, minScore float64) []Citation {
	out := make([]Citation, 0, len(citations))
	for _, c := range citations {
		if c.Score >= minScore {
			out = append(out, c)
		}
	}
	return out
}

// ShortenExcerpt collapses whitespace and truncates text to at most maxLen
// runes, cutting at the last sentence boundary when one exists.
// Truncated text ends with "...".
func ShortenExcerpt(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	cut := string([]rune(text)[:maxLen])
	if i := strings.LastIndex(cut, "."); i > 0 {
		return cut[:i+1] + "..."
	}
	return strings.TrimSpace(cut) + "..."
}
