package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestDocumentService_Read(t *testing.T) {
	svc := NewDocumentService(&mockNormaliserRegistry{})

	doc, err := svc.Read(context.Background(), domain.RawDocument{
		URI:      "articles.txt",
		MIMEType: "text/plain",
		Content:  []byte("ARTICLES OF ASSOCIATION"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ARTICLES OF ASSOCIATION", doc.Content)
	assert.Equal(t, "articles.txt", doc.URI)
}

func TestDocumentService_Read_Empty(t *testing.T) {
	svc := NewDocumentService(&mockNormaliserRegistry{})

	_, err := svc.Read(context.Background(), domain.RawDocument{URI: "empty.txt"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Read(context.Background(), domain.RawDocument{URI: "blank.txt", Content: []byte(" \n\t ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Read_NormaliserError(t *testing.T) {
	svc := NewDocumentService(&mockNormaliserRegistry{err: domain.ErrUnsupportedType})

	_, err := svc.Read(context.Background(), domain.RawDocument{URI: "scan.tiff", Content: []byte{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
	assert.Contains(t, err.Error(), "scan.tiff")
}

func TestDocumentService_SupportedMIMETypes(t *testing.T) {
	svc := NewDocumentService(&mockNormaliserRegistry{})
	assert.Equal(t, []string{"text/plain"}, svc.SupportedMIMETypes())
}
