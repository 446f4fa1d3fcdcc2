package driving

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// CorpusService manages the regulatory corpus used for citations.
type CorpusService interface {
	// Index normalises, splits, embeds and stores each raw document.
	// Re-indexing a source replaces its previous passages.
	Index(ctx context.Context, raws []domain.RawDocument) (*IndexReport, error)

	// Search returns the citations most relevant to a free-text query.
	Search(ctx context.Context, query string, topK int) ([]domain.Citation, error)

	// Remove deletes every passage from a source.
	Remove(ctx context.Context, sourceID string) (int, error)

	// Stats summarises the corpus.
	Stats(ctx context.Context) (*CorpusStats, error)
}

// IndexReport describes the outcome of an Index call.
type IndexReport struct {
	// Sources is the number of documents indexed.
	Sources int

	// Passages is the number of passages stored.
	Passages int

	// Skipped lists sources that produced no passages.
	Skipped []string
}

// CorpusStats summarises the corpus.
type CorpusStats struct {
	// Passages is the number of stored passages.
	Passages int

	// Vectors is the number of indexed vectors.
	Vectors int

	// Sources is the number of distinct sources.
	Sources int

	// EmbeddingModel is the configured embedding model, if any.
	EmbeddingModel string
}
