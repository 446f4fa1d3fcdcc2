package httpapi

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
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
	return []domain.DocumentType{domain.DocumentTypeArticlesOfAssociation, domain.DocumentTypePrivacyPolicy}
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	annotated []byte
}

func (m *mockReportService) JSON(result *domain.EvaluationResult) ([]byte, error) {
	return json.Marshal(map[string]any{
		"documentType": string(result.DocumentType),
		"findings":     len(result.Findings),
	})
}

func (m *mockReportService) Annotate(_ context.Context, _ string, _ []byte, _ *domain.EvaluationResult) ([]byte, error) {
	return m.annotated, nil
}

func (m *mockReportService) CanAnnotate(mimeType string) bool {
	return mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
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
	return &domain.Document{URI: raw.URI, Content: "extracted: " + string(raw.Content)}, nil
}

func (m *mockDocumentService) SupportedMIMETypes() []string { return []string{"text/plain"} }
