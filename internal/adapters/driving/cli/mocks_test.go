package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// mockEvaluationService implements driving.EvaluationService for testing.
type mockEvaluationService struct {
	result    *domain.EvaluationResult
	err       error
	docType   domain.DocumentType
	rules     []domain.ChecklistRule
	lastText  string
	evaluated int
}

func (m *mockEvaluationService) Evaluate(_ context.Context, text string) (*domain.EvaluationResult, error) {
	m.lastText = text
	m.evaluated++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockEvaluationService) Classify(_ context.Context, text string) domain.DocumentType {
	m.lastText = text
	return m.docType
}

func (m *mockEvaluationService) Checklist(docType domain.DocumentType) ([]domain.ChecklistRule, error) {
	if !docType.IsKnown() {
		return nil, domain.ErrUnknownDocumentType
	}
	return m.rules, nil
}

func (m *mockEvaluationService) DocumentTypes() []domain.DocumentType {
	return domain.KnownDocumentTypes()
}

// mockReportService implements driving.ReportService for testing.
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

// mockDocumentService returns the raw bytes as text.
type mockDocumentService struct {
	err error
}

func (m *mockDocumentService) Read(_ context.Context, raw domain.RawDocument) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{URI: raw.URI, Content: string(raw.Content)}, nil
}

func (m *mockDocumentService) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// mockCorpusService implements driving.CorpusService for testing.
type mockCorpusService struct {
	indexed   []domain.RawDocument
	citations []domain.Citation
	stats     *driving.CorpusStats
	removeErr error
	lastTopK  int
}

func (m *mockCorpusService) Index(_ context.Context, raws []domain.RawDocument) (*driving.IndexReport, error) {
	m.indexed = append(m.indexed, raws...)
	return &driving.IndexReport{Sources: len(raws), Passages: 3 * len(raws)}, nil
}

func (m *mockCorpusService) Search(_ context.Context, _ string, topK int) ([]domain.Citation, error) {
	m.lastTopK = topK
	return m.citations, nil
}

func (m *mockCorpusService) Remove(_ context.Context, _ string) (int, error) {
	if m.removeErr != nil {
		return 0, m.removeErr
	}
	return 4, nil
}

func (m *mockCorpusService) Stats(_ context.Context) (*driving.CorpusStats, error) {
	return m.stats, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	setKey      string
	setValue    string
	setErr      error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setKey, m.setValue = key, value
	return nil
}

func (m *mockSettingsService) SetEngines(classifier, matcher domain.EngineMode) error {
	if !classifier.IsValid() || !matcher.IsValid() {
		return domain.ErrInvalidInput
	}
	m.settings.Evaluation.Classifier = classifier
	m.settings.Evaluation.Matcher = matcher
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks wired for one test.
type testServices struct {
	evaluation *mockEvaluationService
	report     *mockReportService
	document   *mockDocumentService
	corpus     *mockCorpusService
	settings   *mockSettingsService
}

// setupTestServices wires fresh mocks and restores the previous services
// and flag values when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		evaluation: &mockEvaluationService{},
		report:     &mockReportService{},
		document:   &mockDocumentService{},
		corpus:     &mockCorpusService{},
		settings:   newMockSettingsService(),
	}

	prev := Services{
		Evaluation: evaluationService,
		Report:     reportService,
		Document:   documentService,
		Corpus:     corpusService,
		Settings:   settingsService,
	}
	SetServices(Services{
		Evaluation: ts.evaluation,
		Report:     ts.report,
		Document:   ts.document,
		Corpus:     ts.corpus,
		Settings:   ts.settings,
	})

	t.Cleanup(func() {
		SetServices(prev)
		checkJSON, checkAnnotate = false, ""
		classifyJSON = false
		corpusSearchTopK = 5
	})
	return ts
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
