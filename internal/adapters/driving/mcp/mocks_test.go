package mcp

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	result   *domain.EvaluationResult
	docType  domain.DocumentType
	rules    map[domain.DocumentType][]domain.ChecklistRule
	err      error
	lastText string
}

func (m *mockEvaluationService) Evaluate(_ context.Context, text string) (*domain.EvaluationResult, error) {
	m.lastText = text
	return m.result, m.err
}

func (m *mockEvaluationService) Classify(_ context.Context, text string) domain.DocumentType {
	m.lastText = text
	return m.docType
}

func (m *mockEvaluationService) Checklist(docType domain.DocumentType) ([]domain.ChecklistRule, error) {
	rules, ok := m.rules[docType]
	if !ok {
		return nil, domain.ErrUnknownDocumentType
	}
	return rules, nil
}

func (m *mockEvaluationService) DocumentTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypeArticlesOfAssociation}
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	citations []domain.Citation
	err       error
	lastTopK  int
}

func (m *mockCorpusService) Index(_ context.Context, _ []domain.RawDocument) (*driving.IndexReport, error) {
	return &driving.IndexReport{}, m.err
}

func (m *mockCorpusService) Search(_ context.Context, _ string, topK int) ([]domain.Citation, error) {
	m.lastTopK = topK
	return m.citations, m.err
}

func (m *mockCorpusService) Remove(_ context.Context, _ string) (int, error) { return 0, m.err }

func (m *mockCorpusService) Stats(_ context.Context) (*driving.CorpusStats, error) {
	return &driving.CorpusStats{}, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	err     error
	lastRaw domain.RawDocument
}

func (m *mockDocumentService) Read(_ context.Context, raw domain.RawDocument) (*domain.Document, error) {
	m.lastRaw = raw
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{URI: raw.URI, Content: string(raw.Content)}, nil
}

func (m *mockDocumentService) SupportedMIMETypes() []string { return []string{"text/plain"} }
