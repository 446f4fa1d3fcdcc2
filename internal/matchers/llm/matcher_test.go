package llm

import (
	"context"
	"errors"
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

func retentionRule() domain.ChecklistRule {
	return domain.ChecklistRule{
		ID:           "data-retention",
		DocumentType: domain.DocumentTypePrivacyPolicy,
		Description:  "Data retention period is stated",
		Required:     true,
	}
}

func TestMatcher_Name(t *testing.T) {
	assert.Equal(t, "llm", New(&mockLLM{}, Config{}).Name())
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.FindingStatus
	}{
		{"plain json", `{"status": "satisfied", "explanation": "Section 5 sets a 2 year period."}`, domain.StatusSatisfied},
		{"code fence", "```json\n{\"status\": \"missing\", \"explanation\": \"No period.\"}\n```", domain.StatusMissing},
		{"prose around", `Here you go: {"status":"partial","explanation":"Vague."} Hope that helps.`, domain.StatusPartiallySatisfied},
		{"n/a alias", `{"status":"N/A","explanation":"Not relevant."}`, domain.StatusNotApplicable},
	}

	citations := []domain.Citation{{SourceID: "gdpr.txt", Excerpt: "Personal data shall be kept no longer than necessary.", Score: 0.7}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(&mockLLM{reply: tt.reply}, Config{}).Match(context.Background(), "doc", retentionRule(), citations)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Status)
			assert.Equal(t, "data-retention", f.RuleID)
			assert.Equal(t, "Data retention period is stated", f.Requirement)
			assert.Equal(t, citations, f.Citations)
			assert.NotEmpty(t, f.Explanation)
		})
	}
}

func TestMatcher_MalformedReplies(t *testing.T) {
	replies := []string{
		"",
		"The document is compliant.",
		`{"status": "satisfied"`,
		`{"explanation": "no status"}`,
		`{"status": "compliant", "explanation": "?"}`,
	}

	for _, reply := range replies {
		_, err := New(&mockLLM{reply: reply}, Config{}).Match(context.Background(), "doc", retentionRule(), nil)
		assert.ErrorIs(t, err, ErrMalformedReply, reply)
	}
}

func TestMatcher_TransportError(t *testing.T) {
	boom := errors.New("503 service unavailable")

	_, err := New(&mockLLM{err: boom}, Config{}).Match(context.Background(), "doc", retentionRule(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "data-retention")
}

func TestMatcher_Prompt(t *testing.T) {
	m := &mockLLM{reply: `{"status":"satisfied","explanation":"ok"}`}
	matcher := New(m, Config{ExcerptRunes: 9})

	citations := []domain.Citation{
		{SourceID: "gdpr.txt", Excerpt: "Storage limitation.", Score: 0.9},
		{SourceID: "dpa.txt", Excerpt: "Retention schedules.", Score: 0.5},
	}
	_, err := matcher.Match(context.Background(), "We keep data for two years.", retentionRule(), citations)
	require.NoError(t, err)

	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0], "Checklist rule data-retention: Data retention period is stated")
	assert.Contains(t, m.prompts[0], "[1] gdpr.txt: Storage limitation.")
	assert.Contains(t, m.prompts[0], "[2] dpa.txt: Retention schedules.")
	assert.Contains(t, m.prompts[0], "We keep d")
	assert.NotContains(t, m.prompts[0], "We keep data")
	assert.Contains(t, m.opts[0].System, "compliance reviewer")
	assert.Equal(t, DefaultMaxTokens, m.opts[0].MaxTokens)
}

func TestMatcher_OptionalRule(t *testing.T) {
	rule := domain.ChecklistRule{
		ID:           "preference-shares",
		DocumentType: domain.DocumentTypeArticlesOfAssociation,
		Description:  "Rights attached to preference shares",
		Required:     false,
		AppliesWhen:  []string{"preference share*"},
	}

	t.Run("missing becomes not applicable", func(t *testing.T) {
		m := &mockLLM{reply: `{"status":"missing","explanation":"No preference share terms."}`}
		f, err := New(m, Config{}).Match(context.Background(), "doc", rule, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusNotApplicable, f.Status)
		assert.Equal(t, "Optional clause not present. No preference share terms.", f.Explanation)

		require.Len(t, m.prompts, 1)
		assert.Contains(t, m.prompts[0], "This clause is optional.")
		assert.Contains(t, m.prompts[0], "applies only when the document mentions any of: preference share*.")
	})

	t.Run("partial verdict kept", func(t *testing.T) {
		m := &mockLLM{reply: `{"status":"partially_satisfied","explanation":"Dividend rights only."}`}
		f, err := New(m, Config{}).Match(context.Background(), "doc", rule, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPartiallySatisfied, f.Status)
	})
}

func TestMatcher_RequiredRuleMissing(t *testing.T) {
	m := &mockLLM{reply: `{"status":"missing","explanation":"No period."}`}
	f, err := New(m, Config{}).Match(context.Background(), "doc", retentionRule(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMissing, f.Status)
	assert.Equal(t, "No period.", f.Explanation)
	assert.Contains(t, m.prompts[0], "This clause is required.")
	assert.NotContains(t, m.prompts[0], "applies only when")
}

func TestMatcher_NoCitations(t *testing.T) {
	m := &mockLLM{reply: `{"status":"missing","explanation":"none"}`}
	_, err := New(m, Config{}).Match(context.Background(), "doc", retentionRule(), nil)
	require.NoError(t, err)
	assert.Contains(t, m.prompts[0], "(none)")
}

func TestMatcher_PromptStore(t *testing.T) {
	m := &mockLLM{reply: `{"status":"missing","explanation":"none"}`}
	matcher := New(m, Config{})
	matcher.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptMatch:       "R=%s D=%s C=%s T=%s",
		driven.PromptMatchSystem: "be strict",
	}})

	_, err := matcher.Match(context.Background(), "doc", retentionRule(), nil)
	require.NoError(t, err)
	assert.Equal(t, "R=data-retention D=Data retention period is stated C=(none) T=doc", m.prompts[0])
	assert.Equal(t, "be strict", m.opts[0].System)
}
