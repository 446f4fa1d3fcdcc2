package driven

import "context"

// VectorIndex provides semantic similarity search over passage embeddings.
// Backed by an in-process index or PostgreSQL with pgvector.
type VectorIndex interface {
	// Add inserts or replaces the vector for the given passage ID.
	Add(ctx context.Context, passageID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, passageID string) error

	// Search finds the k nearest neighbours to the query vector,
	// most similar first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of indexed vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// PassageID is the matched passage.
	PassageID string

	// Similarity is the cosine similarity score. Callers normalise it to [0,1].
	Similarity float64
}
