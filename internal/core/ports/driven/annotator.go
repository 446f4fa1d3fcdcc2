package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Annotator writes findings back into a copy of the evaluated document.
type Annotator interface {
	// Annotate returns a copy of the source document with one note per
	// finding passed in. The source bytes are not modified.
	Annotate(ctx context.Context, source []byte, notes []AnnotationNote) ([]byte, error)

	// SupportedMIMETypes returns the document formats the annotator can write.
	SupportedMIMETypes() []string
}

// AnnotationNote is one comment to place in the document.
type AnnotationNote struct {
	// Finding is the finding being annotated.
	Finding domain.Finding

	// Anchors are phrases used to locate the most relevant paragraph.
	Anchors []string

	// Text is the rendered note.
	Text string
}
