// Package plaintext provides the fallback normaliser for text files.
package plaintext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		normalisers.MIMEPlain,
		"text/markdown",
		"text/csv",
		normalisers.MIMEHTML,
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the document bytes as text. A UTF-8 byte order mark and
// Windows line endings are removed; invalid UTF-8 is rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := bytes.TrimPrefix(raw.Content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return nil, domain.ErrInvalidInput
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	doc := normalisers.NewDocument(raw, normalisers.TitleFromURI(raw.URI), text, "text")
	return &driven.NormaliseResult{Document: doc}, nil
}
