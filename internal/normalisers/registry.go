package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// MIME types the built-in normalisers register under.
const (
	MIMEPlain = "text/plain"
	MIMEHTML  = "text/html"
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// extensionTypes covers files whose type the system MIME table may not know.
var extensionTypes = map[string]string{
	".txt":  MIMEPlain,
	".text": MIMEPlain,
	".md":   MIMEPlain,
	".htm":  MIMEHTML,
	".html": MIMEHTML,
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
}

// Registry selects a normaliser by MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byMIME: make(map[string][]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range normaliser.SupportedMIMETypes() {
		list := append(r.byMIME[mimeType], normaliser)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mimeType] = list
	}
}

// Normalise runs the highest priority normaliser for the document's MIME
// type. Parameters such as charset are ignored when matching.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := baseMIME(raw.MIMEType)
	r.mu.RLock()
	list := r.byMIME[mimeType]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return list[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for t := range r.byMIME {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DetectMIME guesses a MIME type from a file name or URL path. Unknown
// extensions fall back to the system table and then to text/plain.
func DetectMIME(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseMIME(t)
	}
	return MIMEPlain
}

func baseMIME(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// TitleFromURI derives a readable title from the last path element.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// NewDocument builds a normalised document for raw with the given text.
func NewDocument(raw *domain.RawDocument, title, content, format string) domain.Document {
	return domain.Document{
		ID:      uuid.New().String(),
		URI:     raw.URI,
		Title:   title,
		Content: content,
		Metadata: map[string]any{
			"mime_type": raw.MIMEType,
			"format":    format,
		},
		CreatedAt: time.Now(),
	}
}
