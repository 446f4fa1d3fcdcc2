package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Classifier determines the type of a legal document.
// Classification is total: any failure yields domain.DocumentTypeUnknown.
type Classifier interface {
	// Classify returns the document type for the given text.
	Classify(ctx context.Context, text string) domain.DocumentType

	// Name identifies the implementation in logs and reports.
	Name() string
}
