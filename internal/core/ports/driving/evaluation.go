package driving

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// EvaluationService runs the compliance evaluation pipeline.
type EvaluationService interface {
	// Evaluate classifies the text, evaluates every applicable rule and
	// returns the findings in checklist order.
	// Returns domain.ErrUnsupportedDocument when the type cannot be determined
	// and domain.ErrRetrievalUnavailable when no citation index is loaded.
	Evaluate(ctx context.Context, text string) (*domain.EvaluationResult, error)

	// Classify returns the document type without evaluating rules.
	Classify(ctx context.Context, text string) domain.DocumentType

	// Checklist returns the rules that would be evaluated for a type.
	Checklist(docType domain.DocumentType) ([]domain.ChecklistRule, error)

	// DocumentTypes returns every type with a checklist.
	DocumentTypes() []domain.DocumentType
}

// ReportService renders evaluation results.
type ReportService interface {
	// JSON renders the machine-readable report.
	JSON(result *domain.EvaluationResult) ([]byte, error)

	// Annotate returns a copy of the source document with one note per
	// non-satisfied finding. Returns domain.ErrUnsupportedType when no
	// annotator handles the MIME type.
	Annotate(ctx context.Context, mimeType string, source []byte, result *domain.EvaluationResult) ([]byte, error)

	// CanAnnotate reports whether documents of the MIME type can be annotated.
	CanAnnotate(mimeType string) bool
}
