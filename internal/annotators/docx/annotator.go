// Package docx writes evaluation notes into a copy of a Word document.
//
// Notes are added as red runs at the end of the paragraph that best matches
// one of the note's anchors. Notes with no matching paragraph are appended
// as new paragraphs at the end of the body. Every other part of the package
// is copied unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	"github.com/custodia-labs/clausecheck/internal/textnorm"
)

// Ensure Annotator implements the interface.
var _ driven.Annotator = (*Annotator)(nil)

const (
	documentPart = "word/document.xml"

	// DefaultColor is the note colour as an RGB hex string.
	DefaultColor = "FF0000"
)

var (
	paragraphRe = regexp.MustCompile(`(?s)<w:p(?:\s*>|\s[^>]*[^/>]>).*?</w:p>`)
	textRe      = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	entities    = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
)

// Annotator annotates DOCX files.
type Annotator struct {
	color string
}

// Option configures the annotator.
type Option func(*Annotator)

// WithColor sets the note colour.
func WithColor(hex string) Option {
	return func(a *Annotator) {
		if hex != "" {
			a.color = strings.TrimPrefix(hex, "#")
		}
	}
}

// New creates a DOCX annotator.
func New(opts ...Option) *Annotator {
	a := &Annotator{color: DefaultColor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SupportedMIMETypes returns the formats this annotator writes.
func (a *Annotator) SupportedMIMETypes() []string {
	return []string{normalisers.MIMEDOCX}
}

// Annotate returns a new package with the notes written into the body.
func (a *Annotator) Annotate(ctx context.Context, source []byte, notes []driven.AnnotationNote) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(source), int64(len(source)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx package: %v", domain.ErrInvalidInput, err)
	}

	var body *zip.File
	for _, f := range reader.File {
		if f.Name == documentPart {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
	}

	documentXML, err := readFile(body)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	annotated, err := a.annotateXML(documentXML, notes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range reader.File {
		if f != body {
			if err := w.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		out, err := w.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := out.Write(annotated); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// annotateXML inserts the notes into a WordprocessingML body.
func (a *Annotator) annotateXML(documentXML []byte, notes []driven.AnnotationNote) ([]byte, error) {
	doc := string(documentXML)
	spans := paragraphRe.FindAllStringIndex(doc, -1)

	texts := make([]textnorm.Text, len(spans))
	for i, span := range spans {
		texts[i] = textnorm.New(paragraphText(doc[span[0]:span[1]]))
	}

	inline := make(map[int][]string)
	var trailing []string
	for _, note := range notes {
		run, err := a.run(note.Text)
		if err != nil {
			return nil, err
		}
		if i, ok := locate(texts, note.Anchors); ok {
			inline[i] = append(inline[i], run)
			continue
		}
		logger.Debug("No paragraph matches note for %s, appending", note.Finding.RuleID)
		trailing = append(trailing, "<w:p>"+run+"</w:p>")
	}

	var sb strings.Builder
	sb.Grow(len(doc) + 256*len(notes))
	last := 0
	for i, span := range spans {
		runs, ok := inline[i]
		if !ok {
			continue
		}
		closeAt := span[1] - len("</w:p>")
		sb.WriteString(doc[last:closeAt])
		for _, run := range runs {
			sb.WriteString(run)
		}
		last = closeAt
	}

	rest := doc[last:]
	if len(trailing) > 0 {
		at := insertionPoint(rest)
		if at < 0 {
			return nil, fmt.Errorf("%w: document body not found", domain.ErrInvalidInput)
		}
		sb.WriteString(rest[:at])
		for _, p := range trailing {
			sb.WriteString(p)
		}
		rest = rest[at:]
	}
	sb.WriteString(rest)
	return []byte(sb.String()), nil
}

// locate returns the first paragraph containing the highest priority anchor.
func locate(texts []textnorm.Text, anchors []string) (int, bool) {
	for _, anchor := range anchors {
		if strings.TrimSpace(anchor) == "" {
			continue
		}
		for i, text := range texts {
			if text.Contains(anchor) {
				return i, true
			}
		}
	}
	return 0, false
}

// insertionPoint is where new paragraphs go: before the body-level section
// properties, or before the end of the body.
func insertionPoint(doc string) int {
	end := strings.LastIndex(doc, "</w:body>")
	if end < 0 {
		return -1
	}
	sect := strings.LastIndex(doc[:end], "<w:sectPr")
	if sect > strings.LastIndex(doc[:end], "</w:p>") {
		return sect
	}
	return end
}

func (a *Annotator) run(text string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(" "+text)); err != nil {
		return "", fmt.Errorf("escape note: %w", err)
	}
	return `<w:r><w:rPr><w:color w:val="` + a.color + `"/></w:rPr>` +
		`<w:t xml:space="preserve">` + escaped.String() + `</w:t></w:r>`, nil
}

func paragraphText(paragraph string) string {
	var sb strings.Builder
	for _, m := range textRe.FindAllStringSubmatch(paragraph, -1) {
		sb.WriteString(entities.Replace(m[1]))
	}
	return sb.String()
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, f.Name, err)
	}
	return data, nil
}
