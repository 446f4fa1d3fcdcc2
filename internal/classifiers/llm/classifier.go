// Package llm implements a document classifier backed by a language model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure Classifier implements the interfaces.
var (
	_ driven.Classifier       = (*Classifier)(nil)
	_ driven.PromptStoreAware = (*Classifier)(nil)
)

// Default configuration values.
const (
	// DefaultExcerptRunes bounds the document text sent to the model.
	DefaultExcerptRunes = 6000

	// DefaultMaxTokens is enough for a single label.
	DefaultMaxTokens = 20
)

// defaultClassifyPrompt is the fallback prompt when no PromptStore is configured.
const defaultClassifyPrompt = `Classify this legal document. Answer with exactly one label from this list and nothing else:
%s

Document:
"""
%s
"""

Label:`

// Config holds configuration for the llm classifier.
type Config struct {
	// Types are the labels the model may choose from (default: all known types).
	Types []domain.DocumentType

	// ExcerptRunes bounds the document text in the prompt (default: 6000).
	ExcerptRunes int
}

// Classifier asks a language model for the document type.
type Classifier struct {
	llm          driven.LLMService
	types        []domain.DocumentType
	excerptRunes int
	promptStore  driven.PromptStore
}

// New creates an llm classifier. llm must not be nil.
func New(llm driven.LLMService, cfg Config) *Classifier {
	if len(cfg.Types) == 0 {
		cfg.Types = domain.KnownDocumentTypes()
	}
	if cfg.ExcerptRunes <= 0 {
		cfg.ExcerptRunes = DefaultExcerptRunes
	}
	return &Classifier{
		llm:          llm,
		types:        cfg.Types,
		excerptRunes: cfg.ExcerptRunes,
	}
}

// Name returns the classifier name.
func (c *Classifier) Name() string {
	return "llm"
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *Classifier) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Classify returns the document type chosen by the model. Errors and
// labels outside the configured set yield DocumentTypeUnknown.
func (c *Classifier) Classify(ctx context.Context, text string) domain.DocumentType {
	if strings.TrimSpace(text) == "" {
		return domain.DocumentTypeUnknown
	}

	labels := make([]string, len(c.types))
	for i, t := range c.types {
		labels[i] = "- " + string(t)
	}

	template := loadPrompt(c.promptStore, driven.PromptClassify, defaultClassifyPrompt)
	prompt := fmt.Sprintf(template, strings.Join(labels, "\n"), Excerpt(text, c.excerptRunes))

	reply, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   DefaultMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("llm classifier: %v", err)
		return domain.DocumentTypeUnknown
	}

	docType := parseLabel(reply)
	if !c.allowed(docType) {
		logger.Debug("llm classifier: unrecognised label %q", reply)
		return domain.DocumentTypeUnknown
	}
	logger.Debug("llm classifier: %s (model %s)", docType, c.llm.ModelName())
	return docType
}

func (c *Classifier) allowed(t domain.DocumentType) bool {
	for _, allowed := range c.types {
		if t == allowed {
			return true
		}
	}
	return false
}

// parseLabel reads the first non-empty line of a reply as a type label.
func parseLabel(reply string) domain.DocumentType {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "Label:")
		line = strings.Trim(line, " -*`\"'.")
		if line != "" {
			return domain.ParseDocumentType(line)
		}
	}
	return domain.DocumentTypeUnknown
}

// Excerpt truncates text to at most n runes.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil {
		logger.Debug("prompt %s: %v (using default)", name, err)
		return fallback
	}
	return prompt
}
