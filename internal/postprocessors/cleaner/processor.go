// Package cleaner tidies passage text after splitting.
package cleaner

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultMinLength drops fragments such as page numbers and lone headings.
const DefaultMinLength = 20

// Processor strips control characters, collapses runs of spaces within
// each line, removes blank lines and drops passages shorter than the
// minimum length. Positions are renumbered.
type Processor struct {
	minLength int
}

// Option configures the cleaner processor.
type Option func(*Processor)

// WithMinLength sets the minimum passage length in characters.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLength = n
		}
	}
}

// New creates a cleaner processor.
func New(opts ...Option) *Processor {
	p := &Processor{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process returns the cleaned passages.
func (p *Processor) Process(_ context.Context, _ *domain.Document, passages []domain.Passage) ([]domain.Passage, error) {
	out := passages[:0:0]
	for _, passage := range passages {
		passage.Content = Clean(passage.Content)
		if passage.Content == "" || utf8.RuneCountInString(passage.Content) < p.minLength {
			continue
		}
		passage.Position = len(out)
		out = append(out, passage)
	}
	return out, nil
}

// Clean normalises whitespace while keeping line structure.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Map(func(r rune) rune {
			if r == '\t' {
				return ' '
			}
			if unicode.IsControl(r) || r == '\uFEFF' {
				return -1
			}
			return r
		}, line)
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
