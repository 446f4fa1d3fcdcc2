package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// ClauseMatcher decides whether a document satisfies one checklist rule.
// The returned Finding carries exactly the citations passed in.
type ClauseMatcher interface {
	// Match evaluates a single rule against the document text.
	Match(ctx context.Context, text string, rule domain.ChecklistRule, citations []domain.Citation) (domain.Finding, error)

	// Name identifies the implementation in logs and reports.
	Name() string
}
