package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driven.CitationRetriever = (*RetrievalService)(nil)

// searchOverfetch widens the vector search so threshold filtering and
// ordinal tie-breaking still leave topK candidates.
const searchOverfetch = 2

// RetrievalService finds regulatory passages relevant to a query.
// It never writes to the corpus.
type RetrievalService struct {
	passages     driven.PassageStore
	vectorIndex  driven.VectorIndex
	embedding    driven.EmbeddingService
	minRelevance float64
}

// NewRetrievalService creates a citation retriever.
// Any nil dependency makes Retrieve fail with domain.ErrRetrievalUnavailable.
func NewRetrievalService(
	passages driven.PassageStore,
	vectorIndex driven.VectorIndex,
	embedding driven.EmbeddingService,
	minRelevance float64,
) *RetrievalService {
	return &RetrievalService{
		passages:     passages,
		vectorIndex:  vectorIndex,
		embedding:    embedding,
		minRelevance: minRelevance,
	}
}

type rankedCitation struct {
	citation domain.Citation
	ordinal  int
}

// Retrieve returns up to topK citations, most relevant first. Scores are
// in [0,1] and never below the configured minimum relevance. Equal scores
// are ordered by corpus position.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.Citation, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: topK must be at least 1, got %d", domain.ErrInvalidInput, topK)
	}
	if s.passages == nil || s.vectorIndex == nil || s.embedding == nil {
		return nil, fmt.Errorf("%w: no citation index configured", domain.ErrRetrievalUnavailable)
	}

	count, err := s.vectorIndex.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: corpus is empty", domain.ErrRetrievalUnavailable)
	}

	queryVec, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorIndex.Search(ctx, queryVec, topK*searchOverfetch)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return []domain.Citation{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.PassageID
	}
	passages, err := s.passages.GetPassages(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load passages: %w", err)
	}
	byID := make(map[string]domain.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}

	ranked := make([]rankedCitation, 0, len(hits))
	for _, h := range hits {
		p, ok := byID[h.PassageID]
		if !ok {
			logger.Debug("retrieval: vector %s has no passage, skipping", h.PassageID)
			continue
		}
		score := normaliseScore(h.Similarity)
		if score < s.minRelevance {
			continue
		}
		ranked = append(ranked, rankedCitation{
			citation: domain.Citation{
				SourceID: p.SourceID,
				Excerpt:  strings.Join(strings.Fields(p.Content), " "),
				Score:    score,
			},
			ordinal: p.Ordinal,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].citation.Score != ranked[j].citation.Score {
			return ranked[i].citation.Score > ranked[j].citation.Score
		}
		return ranked[i].ordinal < ranked[j].ordinal
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	citations := make([]domain.Citation, len(ranked))
	for i, r := range ranked {
		citations[i] = r.citation
	}
	logger.Debug("retrieval: %q -> %d citations (%d hits)", query, len(citations), len(hits))
	return citations, nil
}

// normaliseScore clamps a similarity into [0,1].
func normaliseScore(similarity float64) float64 {
	switch {
	case math.IsNaN(similarity), similarity < 0:
		return 0
	case similarity > 1:
		return 1
	default:
		return similarity
	}
}
