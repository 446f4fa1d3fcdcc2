package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an exact cosine-similarity index held in memory.
// Results are deterministic: equal scores are ordered by insertion.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	ids        []string
	vectors    map[string][]float32
	norms      map[string]float64
}

// NewVectorIndex creates an empty index. A dimensions value of zero is
// fixed by the first vector added.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
		norms:      make(map[string]float64),
	}
}

// LoadPassages adds every passage that carries an embedding.
// Used to rebuild the index from a persistent passage store.
func (x *VectorIndex) LoadPassages(ctx context.Context, passages []domain.Passage) error {
	for _, p := range passages {
		if len(p.Embedding) == 0 {
			continue
		}
		if err := x.Add(ctx, p.ID, p.Embedding); err != nil {
			return fmt.Errorf("load passage %s: %w", p.ID, err)
		}
	}
	return nil
}

// Add inserts or replaces the vector for the given passage ID.
func (x *VectorIndex) Add(_ context.Context, passageID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for %s", domain.ErrInvalidInput, passageID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimensions == 0 {
		x.dimensions = len(embedding)
	}
	if len(embedding) != x.dimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(embedding), x.dimensions)
	}

	if _, exists := x.vectors[passageID]; !exists {
		x.ids = append(x.ids, passageID)
	}
	x.vectors[passageID] = cloneVector(embedding)
	x.norms[passageID] = norm(embedding)
	return nil
}

// Delete removes a vector from the index. Unknown IDs are ignored.
func (x *VectorIndex) Delete(_ context.Context, passageID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.vectors[passageID]; !exists {
		return nil
	}
	delete(x.vectors, passageID)
	delete(x.norms, passageID)
	for i, id := range x.ids {
		if id == passageID {
			x.ids = append(x.ids[:i], x.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Search returns the k vectors most similar to query.
func (x *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dimensions != 0 && len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), x.dimensions)
	}

	qn := norm(query)
	hits := make([]driven.VectorHit, 0, len(x.ids))
	for _, id := range x.ids {
		hits = append(hits, driven.VectorHit{
			PassageID:  id,
			Similarity: cosine(query, qn, x.vectors[id], x.norms[id]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed vectors.
func (x *VectorIndex) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids), nil
}

// Close releases resources.
func (x *VectorIndex) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
