package driving

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// DocumentService turns uploaded bytes into text the pipeline can evaluate.
type DocumentService interface {
	// Read normalises a raw document. Returns domain.ErrUnsupportedType when
	// no normaliser accepts the MIME type and domain.ErrInvalidInput when the
	// document holds no text.
	Read(ctx context.Context, raw domain.RawDocument) (*domain.Document, error)

	// SupportedMIMETypes lists the input formats that can be read.
	SupportedMIMETypes() []string
}
