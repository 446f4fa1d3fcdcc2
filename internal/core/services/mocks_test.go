package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockClassifier implements driven.Classifier with a fixed answer.
type mockClassifier struct {
	docType domain.DocumentType
}

func (m *mockClassifier) Classify(_ context.Context, _ string) domain.DocumentType { return m.docType }
func (m *mockClassifier) Name() string                                             { return "mock" }

// funcMatcher implements driven.ClauseMatcher with a function.
type funcMatcher struct {
	fn func(ctx context.Context, text string, rule domain.ChecklistRule, citations []domain.Citation) (domain.Finding, error)
}

func (m *funcMatcher) Match(
	ctx context.Context,
	text string,
	rule domain.ChecklistRule,
	citations []domain.Citation,
) (domain.Finding, error) {
	return m.fn(ctx, text, rule, citations)
}

func (m *funcMatcher) Name() string { return "func" }

// funcRetriever implements driven.CitationRetriever with a function.
type funcRetriever struct {
	fn func(ctx context.Context, query string, topK int) ([]domain.Citation, error)
}

func (r *funcRetriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.Citation, error) {
	return r.fn(ctx, query, topK)
}

// staticRetriever returns the same citations for every query.
func staticRetriever(citations ...domain.Citation) *funcRetriever {
	return &funcRetriever{fn: func(_ context.Context, _ string, _ int) ([]domain.Citation, error) {
		out := make([]domain.Citation, len(citations))
		copy(out, citations)
		return out, nil
	}}
}

// keywordEmbedder implements driven.EmbeddingService. Each dimension
// counts one topic word, so similar wording yields similar vectors.
type keywordEmbedder struct {
	topics   [][]string
	embedErr error

	mu    sync.Mutex
	calls int
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{topics: [][]string{
		{"retention", "retain", "kept", "storage"},
		{"office", "address"},
		{"share", "capital"},
	}}
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.topics))
	for i, words := range e.topics {
		for _, w := range words {
			vec[i] += float32(strings.Count(lower, w))
		}
	}
	return vec, nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int              { return len(e.topics) }
func (e *keywordEmbedder) ModelName() string            { return "keyword-test" }
func (e *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (e *keywordEmbedder) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex with fixed hits.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	count     int
	countErr  error
	searchErr error
}

func (m *mockVectorIndex) Add(_ context.Context, _ string, _ []float32) error { return nil }
func (m *mockVectorIndex) Delete(_ context.Context, _ string) error           { return nil }
func (m *mockVectorIndex) Count(_ context.Context) (int, error)               { return m.count, m.countErr }
func (m *mockVectorIndex) Close() error                                       { return nil }

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

// mockNormaliserRegistry implements driven.NormaliserRegistry by treating
// content as plain text.
type mockNormaliserRegistry struct {
	err error
}

func (m *mockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:      raw.URI,
		URI:     raw.URI,
		Content: string(raw.Content),
	}}, nil
}

func (m *mockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (m *mockNormaliserRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// paragraphPipeline implements driven.PostProcessorPipeline by splitting
// on blank lines.
type paragraphPipeline struct{}

func (paragraphPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Passage, error) {
	var passages []domain.Passage
	for i, para := range strings.Split(doc.Content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			ID:         fmt.Sprintf("%s#%d", doc.URI, i),
			DocumentID: doc.ID,
			Content:    para,
			Position:   i,
		})
	}
	return passages, nil
}

// mockAnnotator implements driven.Annotator and records the notes.
type mockAnnotator struct {
	notes []driven.AnnotationNote
	err   error
}

func (m *mockAnnotator) Annotate(_ context.Context, source []byte, notes []driven.AnnotationNote) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.notes = notes
	out := append([]byte{}, source...)
	for _, n := range notes {
		out = append(out, []byte("\n"+n.Text)...)
	}
	return out, nil
}

func (m *mockAnnotator) SupportedMIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

var errBoom = errors.New("boom")
