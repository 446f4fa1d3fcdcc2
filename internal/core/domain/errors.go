package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown normaliser or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnknownDocumentType indicates no checklist is registered for a document type.
	ErrUnknownDocumentType = errors.New("unknown document type")

	// ErrUnsupportedDocument indicates the classifier could not place the document
	// and no generic checklist exists to fall back on.
	ErrUnsupportedDocument = errors.New("unsupported document")

	// ErrRetrievalUnavailable indicates the citation index is not loaded.
	// An evaluation cannot produce grounded findings without it.
	ErrRetrievalUnavailable = errors.New("citation retrieval unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The llm classifier and matcher are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Citation retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
