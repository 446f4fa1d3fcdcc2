// Package llm implements a clause matcher that asks a language model for a
// verdict on each checklist rule.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure Matcher implements the interfaces.
var (
	_ driven.ClauseMatcher    = (*Matcher)(nil)
	_ driven.PromptStoreAware = (*Matcher)(nil)
)

// Default configuration values.
const (
	DefaultExcerptRunes = 12000
	DefaultMaxTokens    = 400
)

// ErrMalformedReply is returned when the model reply is not a usable verdict.
var ErrMalformedReply = errors.New("malformed model reply")

// Fallback prompts used when no PromptStore is configured.
const (
	defaultMatchPrompt = `Checklist rule %s: %s

Relevant regulation excerpts:
%s

Document:
"""
%s
"""

Does the document satisfy the rule? Reply with a single JSON object and nothing else:
{"status": "satisfied" | "partially_satisfied" | "missing" | "not_applicable", "explanation": "<one or two sentences>"}`

	defaultMatchSystem = `You are a compliance reviewer checking corporate legal documents against a fixed checklist.
Judge only the single rule you are given.`
)

// Config holds configuration for the llm matcher.
type Config struct {
	// ExcerptRunes bounds the document text in the prompt (default: 12000).
	ExcerptRunes int

	// MaxTokens bounds the reply (default: 400).
	MaxTokens int
}

// Matcher asks a language model whether a document satisfies a rule.
type Matcher struct {
	llm          driven.LLMService
	excerptRunes int
	maxTokens    int
	promptStore  driven.PromptStore
}

// verdict is the JSON object the model is asked to produce.
type verdict struct {
	Status      string `json:"status"`
	Explanation string `json:"explanation"`
}

// New creates an llm matcher. llm must not be nil.
func New(llm driven.LLMService, cfg Config) *Matcher {
	if cfg.ExcerptRunes <= 0 {
		cfg.ExcerptRunes = DefaultExcerptRunes
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Matcher{
		llm:          llm,
		excerptRunes: cfg.ExcerptRunes,
		maxTokens:    cfg.MaxTokens,
	}
}

// Name returns the matcher name.
func (m *Matcher) Name() string {
	return "llm"
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (m *Matcher) SetPromptStore(store driven.PromptStore) {
	m.promptStore = store
}

// Match evaluates a single rule against the document text. Transport
// failures and unusable replies are returned as errors; the caller decides
// how to degrade.
func (m *Matcher) Match(
	ctx context.Context,
	text string,
	rule domain.ChecklistRule,
	citations []domain.Citation,
) (domain.Finding, error) {
	template := m.loadPrompt(driven.PromptMatch, defaultMatchPrompt)
	prompt := fmt.Sprintf(template, rule.ID, describeRule(rule), formatCitations(citations), excerpt(text, m.excerptRunes))

	reply, err := m.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      m.loadPrompt(driven.PromptMatchSystem, defaultMatchSystem),
		MaxTokens:   m.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return domain.Finding{}, fmt.Errorf("match %s: %w", rule.ID, err)
	}

	v, err := parseVerdict(reply)
	if err != nil {
		logger.Debug("llm matcher: rule %s reply %q", rule.ID, reply)
		return domain.Finding{}, fmt.Errorf("match %s: %w", rule.ID, err)
	}

	status, err := domain.ParseFindingStatus(v.Status)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("match %s: %w: %v", rule.ID, ErrMalformedReply, err)
	}

	explanation := strings.TrimSpace(v.Explanation)
	// An absent optional clause is never a gap.
	if status == domain.StatusMissing && !rule.Required {
		status = domain.StatusNotApplicable
		explanation = strings.TrimSpace("Optional clause not present. " + explanation)
	}

	return domain.Finding{
		RuleID:      rule.ID,
		Requirement: rule.Description,
		Status:      status,
		Citations:   citations,
		Explanation: explanation,
	}, nil
}

// describeRule renders the rule description with the facts the model needs
// to pick between missing and not_applicable.
func describeRule(rule domain.ChecklistRule) string {
	var b strings.Builder
	b.WriteString(rule.Description)
	if rule.Required {
		b.WriteString("\nThis clause is required.")
	} else {
		b.WriteString("\nThis clause is optional. If the document does not contain it, answer \"not_applicable\" rather than \"missing\".")
	}
	if rule.IsConditional() {
		fmt.Fprintf(&b, "\nThe rule applies only when the document mentions any of: %s.", strings.Join(rule.AppliesWhen, ", "))
	}
	return b.String()
}

// parseVerdict extracts the first JSON object from a reply. Markdown code
// fences and surrounding prose are ignored.
func parseVerdict(reply string) (verdict, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return verdict{}, fmt.Errorf("%w: no JSON object", ErrMalformedReply)
	}

	var v verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return verdict{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if strings.TrimSpace(v.Status) == "" {
		return verdict{}, fmt.Errorf("%w: missing status", ErrMalformedReply)
	}
	return v, nil
}

func formatCitations(citations []domain.Citation) string {
	if len(citations) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, c := range citations {
		fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, c.SourceID, c.Excerpt)
	}
	return strings.TrimRight(b.String(), "\n")
}

func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (m *Matcher) loadPrompt(name, fallback string) string {
	if m.promptStore == nil {
		return fallback
	}
	prompt, err := m.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}
