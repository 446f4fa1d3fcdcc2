// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for an evaluation to run:
//
//   - ChecklistRegistry: Static checklist rules per document type
//   - Classifier: Maps document text to a DocumentType
//   - ClauseMatcher: Produces a Finding for one rule
//   - CitationRetriever: Regulatory passages for a query
//   - ConfigStore: Application configuration
//
// # Corpus Interfaces
//
// These back the CitationRetriever and the corpus commands:
//
//   - PassageStore: Passage persistence
//   - VectorIndex: Vector storage/search (memory or pgvector)
//   - EmbeddingService: Generates vector embeddings
//   - Normaliser / NormaliserRegistry: Raw bytes to text
//   - PostProcessor: Splits corpus documents into passages
//
// # Optional Interfaces
//
// These can be nil - the keyword engines need neither:
//
//   - LLMService: Language model for the llm classifier and matcher
//   - Annotator: Writes findings back into the source document
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, classifier, matcher or normaliser package
package driven
