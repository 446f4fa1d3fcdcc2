package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// mockLLM is a mock implementation of driven.LLMService for testing.
type mockLLM struct {
	reply   string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore is a mock implementation of driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

func TestClassifier_Name(t *testing.T) {
	assert.Equal(t, "llm", New(&mockLLM{}, Config{}).Name())
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.DocumentType
	}{
		{"canonical", "privacy_policy", domain.DocumentTypePrivacyPolicy},
		{"display name", "Articles of Association", domain.DocumentTypeArticlesOfAssociation},
		{"decorated", "Label: `service_agreement`.\n", domain.DocumentTypeServiceAgreement},
		{"leading blank lines", "\n\n  privacy notice\nbecause it says so", domain.DocumentTypePrivacyPolicy},
		{"unrecognised", "employment contract", domain.DocumentTypeUnknown},
		{"explicit unknown", "unknown", domain.DocumentTypeUnknown},
		{"empty", "", domain.DocumentTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockLLM{reply: tt.reply}, Config{})
			assert.Equal(t, tt.want, c.Classify(context.Background(), "some document"))
		})
	}
}

func TestClassifier_ErrorYieldsUnknown(t *testing.T) {
	c := New(&mockLLM{err: errors.New("connection refused")}, Config{})
	assert.Equal(t, domain.DocumentTypeUnknown, c.Classify(context.Background(), "text"))
}

func TestClassifier_EmptyTextSkipsModel(t *testing.T) {
	m := &mockLLM{reply: "privacy_policy"}
	c := New(m, Config{})

	assert.Equal(t, domain.DocumentTypeUnknown, c.Classify(context.Background(), "   "))
	assert.Empty(t, m.prompts)
}

func TestClassifier_RestrictedTypes(t *testing.T) {
	c := New(&mockLLM{reply: "privacy_policy"}, Config{
		Types: []domain.DocumentType{domain.DocumentTypeServiceAgreement},
	})
	assert.Equal(t, domain.DocumentTypeUnknown, c.Classify(context.Background(), "text"))
}

func TestClassifier_PromptContents(t *testing.T) {
	m := &mockLLM{reply: "privacy_policy"}
	c := New(m, Config{ExcerptRunes: 5})

	c.Classify(context.Background(), "abcdefghij")

	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0], "- articles_of_association")
	assert.Contains(t, m.prompts[0], "- privacy_policy")
	assert.Contains(t, m.prompts[0], "abcde")
	assert.NotContains(t, m.prompts[0], "abcdef")
	assert.Equal(t, DefaultMaxTokens, m.opts[0].MaxTokens)
}

func TestClassifier_PromptStore(t *testing.T) {
	m := &mockLLM{reply: "service_agreement"}
	c := New(m, Config{})
	c.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptClassify: "CUSTOM %s | %s",
	}})

	assert.Equal(t, domain.DocumentTypeServiceAgreement, c.Classify(context.Background(), "doc"))
	require.Len(t, m.prompts, 1)
	assert.True(t, strings.HasPrefix(m.prompts[0], "CUSTOM "))

	c.SetPromptStore(&mockPromptStore{})
	c.Classify(context.Background(), "doc")
	assert.Contains(t, m.prompts[1], "Classify this legal document")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "héll", Excerpt("  héllo ", 4))
	assert.Equal(t, "hi", Excerpt("hi", 10))
	assert.Equal(t, "hi", Excerpt(" hi ", 0))
}
