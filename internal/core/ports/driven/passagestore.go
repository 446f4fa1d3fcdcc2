package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// PassageStore persists the regulatory corpus.
type PassageStore interface {
	// SavePassages stores passages, replacing any with the same ID.
	SavePassages(ctx context.Context, passages []domain.Passage) error

	// GetPassages returns the passages for the given IDs. Unknown IDs are skipped.
	GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error)

	// ListPassages returns every passage in corpus order.
	ListPassages(ctx context.Context) ([]domain.Passage, error)

	// DeleteSource removes every passage from one source and returns their IDs.
	DeleteSource(ctx context.Context, sourceID string) ([]string, error)

	// DeletePassages removes the passages with the given IDs. Unknown IDs are skipped.
	DeletePassages(ctx context.Context, ids []string) error

	// NextOrdinal returns the corpus ordinal for the next ingested passage.
	NextOrdinal(ctx context.Context) (int, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)
}
