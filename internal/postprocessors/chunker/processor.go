// Package chunker splits corpus documents into overlapping passages.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per passage.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// separators are preferred break points, strongest first.
var separators = [][]rune{[]rune("\n\n"), []rune("\n"), []rune(". "), []rune(" ")}

// Processor splits document content into passages of at most chunkSize
// characters. Breaks fall on the strongest separator in the second half of
// the window so passages tend to end on paragraph or sentence boundaries.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into passages. Input passages are
// ignored. Passages take their SourceID from the document URI.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Passage) ([]domain.Passage, error) {
	runes := []rune(strings.TrimSpace(doc.Content))
	if len(runes) == 0 {
		return nil, nil
	}

	sourceID := doc.URI
	if sourceID == "" {
		sourceID = doc.ID
	}

	passages := make([]domain.Passage, 0, len(runes)/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < len(runes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+p.chunkSize, len(runes))
		if end < len(runes) {
			end = p.breakPoint(runes, start, end)
		}

		if text := strings.TrimSpace(string(runes[start:end])); text != "" {
			passages = append(passages, domain.Passage{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				SourceID:   sourceID,
				Content:    text,
				Position:   len(passages),
			})
		}

		if end >= len(runes) {
			break
		}
		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return passages, nil
}

// breakPoint returns the index just after the strongest separator found
// in the second half of runes[start:end], or end if there is none.
func (p *Processor) breakPoint(runes []rune, start, end int) int {
	floor := start + (end-start)/2
	for _, sep := range separators {
		for i := end; i-len(sep) >= floor; i-- {
			if hasSuffixAt(runes, i, sep) {
				return i
			}
		}
	}
	return end
}

func hasSuffixAt(runes []rune, i int, sep []rune) bool {
	if i < len(sep) {
		return false
	}
	for j := range sep {
		if runes[i-len(sep)+j] != sep[j] {
			return false
		}
	}
	return true
}
