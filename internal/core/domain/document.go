package domain

import "time"

// Document is normalised text, either the legal document under evaluation
// or one source of the regulatory corpus.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was normalised.
	CreatedAt time.Time
}

// Passage is a retrievable unit of the regulatory corpus.
// Corpus sources are split into passages for citation lookup.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// DocumentID links to the corpus Document the passage came from.
	DocumentID string

	// SourceID identifies the regulatory source for citations (usually its URI).
	SourceID string

	// Content is the passage text.
	Content string

	// Position is the ordinal position within the source document.
	Position int

	// Ordinal is the position within the whole corpus. It is assigned on
	// ingestion and breaks ties between equally relevant passages.
	Ordinal int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// RawDocument represents opaque bytes read from a file or URL.
// It is the input to normalisation.
type RawDocument struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
