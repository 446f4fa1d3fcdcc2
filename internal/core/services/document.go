package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService reads documents submitted for evaluation.
type DocumentService struct {
	normalisers driven.NormaliserRegistry
}

// NewDocumentService creates a document service.
func NewDocumentService(normalisers driven.NormaliserRegistry) *DocumentService {
	return &DocumentService{normalisers: normalisers}
}

// Read normalises a raw document and rejects documents without text.
func (s *DocumentService) Read(ctx context.Context, raw domain.RawDocument) (*domain.Document, error) {
	if len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, raw.URI)
	}

	result, err := s.normalisers.Normalise(ctx, &raw)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", raw.URI, err)
	}

	doc := result.Document
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: %s contains no text", domain.ErrInvalidInput, raw.URI)
	}

	logger.Debug("read %s (%s, %d chars)", raw.URI, raw.MIMEType, len(doc.Content))
	return &doc, nil
}

// SupportedMIMETypes lists the input formats that can be read.
func (s *DocumentService) SupportedMIMETypes() []string {
	return s.normalisers.SupportedMIMETypes()
}
