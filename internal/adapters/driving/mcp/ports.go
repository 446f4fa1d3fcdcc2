package mcp

import (
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evaluation classifies documents and evaluates checklists.
	Evaluation driving.EvaluationService

	// Corpus answers citation lookups.
	Corpus driving.CorpusService

	// Documents reads files passed by path.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Evaluation == nil {
		return ErrMissingEvaluationService
	}
	// Corpus and Documents are optional
	return nil
}
