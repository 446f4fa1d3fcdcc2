package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// PostProcessor turns corpus document content into passages.
// PostProcessors are chained in a pipeline (e.g., chunking, cleaning).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns passages.
	// If the processor modifies passages (e.g., cleaning), it receives and returns them.
	// If the processor creates passages (e.g., chunker), it receives nil and returns new ones.
	Process(ctx context.Context, doc *domain.Document, passages []domain.Passage) ([]domain.Passage, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Passage, error)
}
