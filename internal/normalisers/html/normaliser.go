// Package html extracts readable text from HTML pages. It is used for
// regulatory sources fetched from the web, where navigation, scripts and
// styles would otherwise pollute the passages.
package html

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Template: true,
	atom.Iframe:   true,
}

// blocks end the current line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Blockquote: true,
	atom.Pre: true, atom.Table: true, atom.Section: true, atom.Article: true,
	atom.Main: true, atom.Dt: true, atom.Dd: true, atom.Ul: true, atom.Ol: true,
}

// paragraphs are separated from what follows by a blank line.
var paragraphs = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Blockquote: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Ul: true, atom.Ol: true,
}

// paragraphBreak marks the end of a paragraph on its own line. The parser
// never emits NUL in text nodes.
const paragraphBreak = "\x00"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMEHTML, "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to text. Block elements become line
// breaks and paragraphs are separated by a blank line so the chunker can
// split on them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	root, err := html.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	title := findTitle(root)
	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}

	doc := normalisers.NewDocument(raw, title, ExtractText(root), "html")
	return &driven.NormaliseResult{Document: doc}, nil
}

// StripHTML parses content and returns its readable text.
func StripHTML(content string) string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return ExtractText(root)
}

// ExtractText walks the tree and returns its visible text.
func ExtractText(root *html.Node) string {
	var sb strings.Builder
	walk(root, &sb)
	return tidy(sb.String())
}

func walk(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(lineBreaks.Replace(n.Data))
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if blocks[n.DataAtom] {
			sb.WriteByte('\n')
		}
	case html.CommentNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, sb)
	}

	if n.Type == html.ElementNode {
		switch {
		case paragraphs[n.DataAtom]:
			sb.WriteString("\n" + paragraphBreak + "\n")
		case blocks[n.DataAtom] && n.FirstChild != nil:
			sb.WriteByte('\n')
		}
	}
}

// tidy collapses spaces within lines, drops empty lines and puts one blank
// line wherever a paragraph ended.
func tidy(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(text, "\n") {
		if line == paragraphBreak {
			blank = len(out) > 0
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return strings.Join(strings.Fields(sb.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
