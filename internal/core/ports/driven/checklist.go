package driven

import "github.com/custodia-labs/clausecheck/internal/core/domain"

// ChecklistRegistry provides the static rules for each document type.
// Implementations are built once at startup and are safe for concurrent reads.
type ChecklistRegistry interface {
	// RulesFor returns the ordered rules for a document type.
	// Returns domain.ErrUnknownDocumentType when no checklist is registered.
	RulesFor(docType domain.DocumentType) ([]domain.ChecklistRule, error)

	// DocumentTypes returns the types that have a checklist, in a stable order.
	DocumentTypes() []domain.DocumentType

	// Profiles returns the classification profiles, ordered by priority.
	Profiles() []domain.ClassificationProfile
}
