package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Regulation (EU) 2016/679 &amp; recitals</title><style>p { color: red }</style></head>
<body>
<nav><a href="/">Home</a> | <a href="/laws">Laws</a></nav>
<h1>Article 5</h1>
<p>Personal data shall be <b>kept</b> in a form which permits
   identification of data subjects for no longer than is necessary.</p>
<script>trackVisit();</script>
<ul><li>lawfulness</li><li>fairness</li></ul>
<footer>Copyright</footer>
</body>
</html>`
	raw := &domain.RawDocument{
		URI:      "https://eur-lex.europa.eu/gdpr.html",
		MIMEType: "text/html",
		Content:  []byte(page),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Regulation (EU) 2016/679 & recitals", doc.Title)
	assert.Equal(t, "Article 5\n\n"+
		"Personal data shall be kept in a form which permits identification of data subjects for no longer than is necessary.\n\n"+
		"lawfulness\nfairness", doc.Content)
	assert.Equal(t, "html", doc.Metadata["format"])
	assert.NotContains(t, doc.Content, "trackVisit")
	assert.NotContains(t, doc.Content, "Home")
	assert.NotContains(t, doc.Content, "Copyright")
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	raw := &domain.RawDocument{URI: "/corpus/companies-act_2006.html", Content: []byte("<p>Section 1</p>")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "companies act 2006", result.Document.Title)
	assert.Equal(t, "Section 1", result.Document.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "no tags here", "no tags here"},
		{"entities", "<p>Terms &lt;&gt; &quot;Conditions&quot;</p>", `Terms <> "Conditions"`},
		{"line breaks", "first<br>second<hr/>third", "first\nsecond\nthird"},
		{"comments", "<p>kept<!-- hidden --></p>", "kept"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr></table>", "a\nb"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"whitespace", "<div>  lots   of\n\t space </div>", "lots of space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.input))
		})
	}
}
