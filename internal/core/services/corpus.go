package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// DefaultEmbedBatchSize is the number of passages embedded per request.
const DefaultEmbedBatchSize = 32

// CorpusService builds and queries the regulatory corpus.
type CorpusService struct {
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	passages    driven.PassageStore
	vectorIndex driven.VectorIndex
	embedding   driven.EmbeddingService
	retriever   driven.CitationRetriever
}

// NewCorpusService creates a corpus service.
// vectorIndex and embedding may be nil; indexing and search then fail
// with the matching unavailable error.
func NewCorpusService(
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	passages driven.PassageStore,
	vectorIndex driven.VectorIndex,
	embedding driven.EmbeddingService,
	retriever driven.CitationRetriever,
) *CorpusService {
	return &CorpusService{
		normalisers: normalisers,
		pipeline:    pipeline,
		passages:    passages,
		vectorIndex: vectorIndex,
		embedding:   embedding,
		retriever:   retriever,
	}
}

// Index normalises, splits, embeds and stores each raw document. A source
// is replaced only after its new passages have been embedded, so a failed
// run leaves the previous version searchable.
func (s *CorpusService) Index(ctx context.Context, raws []domain.RawDocument) (*driving.IndexReport, error) {
	if s.embedding == nil {
		return nil, fmt.Errorf("index corpus: %w", domain.ErrEmbeddingUnavailable)
	}
	if s.vectorIndex == nil {
		return nil, fmt.Errorf("index corpus: %w", domain.ErrVectorIndexUnavailable)
	}

	report := &driving.IndexReport{}
	for i := range raws {
		raw := &raws[i]
		n, err := s.indexOne(ctx, raw)
		if err != nil {
			return report, fmt.Errorf("index %s: %w", raw.URI, err)
		}
		if n == 0 {
			logger.Warn("Corpus source %s produced no passages", raw.URI)
			report.Skipped = append(report.Skipped, raw.URI)
			continue
		}
		report.Sources++
		report.Passages += n
	}
	return report, nil
}

func (s *CorpusService) indexOne(ctx context.Context, raw *domain.RawDocument) (int, error) {
	result, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("normalise: %w", err)
	}
	doc := result.Document
	if doc.URI == "" {
		doc.URI = raw.URI
	}

	passages, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return 0, fmt.Errorf("split: %w", err)
	}
	if len(passages) == 0 {
		return 0, nil
	}

	if err := s.embed(ctx, passages); err != nil {
		return 0, err
	}

	stale, err := s.sourcePassageIDs(ctx, doc.URI)
	if err != nil {
		return 0, err
	}

	next, err := s.passages.NextOrdinal(ctx)
	if err != nil {
		return 0, fmt.Errorf("next ordinal: %w", err)
	}
	fresh := make(map[string]struct{}, len(passages))
	for i := range passages {
		passages[i].Ordinal = next + i
		if passages[i].SourceID == "" {
			passages[i].SourceID = doc.URI
		}
		fresh[passages[i].ID] = struct{}{}
	}

	// The previous version stays in place until the new one is stored.
	if err := s.passages.SavePassages(ctx, passages); err != nil {
		return 0, fmt.Errorf("save passages: %w", err)
	}
	for _, p := range passages {
		if err := s.vectorIndex.Add(ctx, p.ID, p.Embedding); err != nil {
			return 0, fmt.Errorf("index vector: %w", err)
		}
	}

	var old []string
	for _, id := range stale {
		if _, ok := fresh[id]; !ok {
			old = append(old, id)
		}
	}
	if err := s.deletePassages(ctx, old); err != nil {
		return 0, err
	}

	logger.Debug("Indexed %s: %d passages", doc.URI, len(passages))
	return len(passages), nil
}

func (s *CorpusService) embed(ctx context.Context, passages []domain.Passage) error {
	for start := 0; start < len(passages); start += DefaultEmbedBatchSize {
		end := min(start+DefaultEmbedBatchSize, len(passages))

		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Content)
		}

		vectors, err := s.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed passages: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embed passages: got %d vectors for %d passages", len(vectors), len(texts))
		}
		for i, v := range vectors {
			passages[start+i].Embedding = v
		}
	}
	return nil
}

// Search returns the citations most relevant to a free-text query.
func (s *CorpusService) Search(ctx context.Context, query string, topK int) ([]domain.Citation, error) {
	if s.retriever == nil {
		return nil, domain.ErrRetrievalUnavailable
	}
	return s.retriever.Retrieve(ctx, query, topK)
}

// Remove deletes every passage from a source.
func (s *CorpusService) Remove(ctx context.Context, sourceID string) (int, error) {
	n, err := s.removeSource(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: source %s", domain.ErrNotFound, sourceID)
	}
	return n, nil
}

func (s *CorpusService) sourcePassageIDs(ctx context.Context, sourceID string) ([]string, error) {
	all, err := s.passages.ListPassages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	var ids []string
	for _, p := range all {
		if p.SourceID == sourceID {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (s *CorpusService) deletePassages(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.passages.DeletePassages(ctx, ids); err != nil {
		return fmt.Errorf("delete passages: %w", err)
	}
	return s.deleteVectors(ctx, ids)
}

func (s *CorpusService) deleteVectors(ctx context.Context, ids []string) error {
	if s.vectorIndex == nil {
		return nil
	}
	for _, id := range ids {
		if err := s.vectorIndex.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete vector: %w", err)
		}
	}
	return nil
}

func (s *CorpusService) removeSource(ctx context.Context, sourceID string) (int, error) {
	ids, err := s.passages.DeleteSource(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("delete passages: %w", err)
	}
	if err := s.deleteVectors(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Stats summarises the corpus.
func (s *CorpusService) Stats(ctx context.Context) (*driving.CorpusStats, error) {
	passages, err := s.passages.ListPassages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}

	stats := &driving.CorpusStats{Passages: len(passages)}
	sources := make(map[string]struct{})
	for _, p := range passages {
		sources[p.SourceID] = struct{}{}
	}
	stats.Sources = len(sources)

	if s.vectorIndex != nil {
		n, err := s.vectorIndex.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count vectors: %w", err)
		}
		stats.Vectors = n
	}
	if s.embedding != nil {
		stats.EmbeddingModel = s.embedding.ModelName()
	}
	return stats, nil
}
