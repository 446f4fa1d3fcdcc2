// Package domain defines the core business entities for clausecheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentType: The closed set of document kinds with a checklist
//   - ChecklistRule: A single compliance requirement
//   - Citation: A regulatory passage supporting a finding
//   - Finding: The verdict for one rule
//   - EvaluationResult: All findings for one document plus a summary
//   - Passage: A unit of the regulatory corpus
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
