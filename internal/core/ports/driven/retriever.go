package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// CitationRetriever finds regulatory passages relevant to a query.
type CitationRetriever interface {
	// Retrieve returns up to topK citations, most relevant first.
	// Returns domain.ErrRetrievalUnavailable when no index is loaded.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.Citation, error)
}
