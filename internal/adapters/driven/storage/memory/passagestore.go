package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure PassageStore implements the interface.
var _ driven.PassageStore = (*PassageStore)(nil)

// PassageStore is an in-memory implementation of driven.PassageStore.
type PassageStore struct {
	mu       sync.RWMutex
	passages map[string]domain.Passage
	next     int
}

// NewPassageStore creates a new in-memory passage store.
func NewPassageStore() *PassageStore {
	return &PassageStore{
		passages: make(map[string]domain.Passage),
	}
}

// SavePassages stores passages, replacing any with the same ID.
func (s *PassageStore) SavePassages(_ context.Context, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range passages {
		p.Embedding = cloneVector(p.Embedding)
		s.passages[p.ID] = p
		if p.Ordinal >= s.next {
			s.next = p.Ordinal + 1
		}
	}
	return nil
}

// GetPassages returns the passages for the given IDs in request order.
// Unknown IDs are skipped.
func (s *PassageStore) GetPassages(_ context.Context, ids []string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.passages[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListPassages returns every passage ordered by corpus ordinal.
func (s *PassageStore) ListPassages(_ context.Context) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Passage, 0, len(s.passages))
	for _, p := range s.passages {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ordinal != result[j].Ordinal {
			return result[i].Ordinal < result[j].Ordinal
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeletePassages removes the passages with the given IDs.
func (s *PassageStore) DeletePassages(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.passages, id)
	}
	return nil
}

// DeleteSource removes every passage from one source and returns their IDs.
func (s *PassageStore) DeleteSource(_ context.Context, sourceID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, p := range s.passages {
		if p.SourceID == sourceID {
			ids = append(ids, id)
			delete(s.passages, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// NextOrdinal returns the corpus ordinal for the next ingested passage.
// Ordinals are never reused, even after deletions.
func (s *PassageStore) NextOrdinal(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next, nil
}

// Count returns the number of stored passages.
func (s *PassageStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages), nil
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
