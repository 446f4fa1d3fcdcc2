package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func sampleResult() *domain.EvaluationResult {
	return domain.NewEvaluationResult(domain.DocumentTypePrivacyPolicy, []domain.Finding{
		{
			RuleID:      "pp-controller-identity",
			Requirement: "Identity and contact details of the controller",
			Status:      domain.StatusSatisfied,
			Explanation: "Controller named in section 1",
			Citations: []domain.Citation{
				{SourceID: "gdpr.html", Excerpt: "Article 13(1)(a) the identity and contact details", Score: 0.82},
			},
		},
		{
			RuleID:      "pp-retention",
			Requirement: "Retention period",
			Status:      domain.StatusMissing,
			Explanation: "No retention period stated",
			Degraded:    true,
		},
	})
}

func TestCheckCmd_PrintsFindings(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.result = sampleResult()
	path := writeTempFile(t, "policy.txt", "We are the data controller.")

	out, err := executeCommand(t, "check", path)

	require.NoError(t, err)
	assert.Equal(t, "We are the data controller.", ts.evaluation.lastText)
	assert.Contains(t, out, "Privacy Policy")
	assert.Contains(t, out, "pp-controller-identity")
	assert.Contains(t, out, "Missing*")
	assert.Contains(t, out, "gdpr.html 0.82")
	assert.Contains(t, out, "Summary: 1 satisfied, 0 partial, 1 missing, 0 not applicable")
	assert.Contains(t, out, "1 finding(s) could not be fully evaluated")
}

func TestCheckCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.result = sampleResult()
	path := writeTempFile(t, "policy.txt", "text")

	out, err := executeCommand(t, "check", "--json", path)

	require.NoError(t, err)
	assert.Contains(t, out, `"documentType":"privacy_policy"`)
	assert.NotContains(t, out, "Summary:")
}

func TestCheckCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "check", filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestCheckCmd_RetrievalUnavailableHint(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.err = domain.ErrRetrievalUnavailable
	path := writeTempFile(t, "policy.txt", "text")

	_, err := executeCommand(t, "check", path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	assert.Contains(t, err.Error(), "clausecheck corpus index")
}

func TestCheckCmd_DocumentReadError(t *testing.T) {
	ts := setupTestServices(t)
	ts.document.err = domain.ErrInvalidInput
	path := writeTempFile(t, "empty.txt", "")

	_, err := executeCommand(t, "check", path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, ts.evaluation.evaluated)
}

func TestCheckCmd_AnnotateRejectsNonDocx(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.result = sampleResult()
	path := writeTempFile(t, "policy.txt", "text")
	out := filepath.Join(t.TempDir(), "out.docx")

	_, err := executeCommand(t, "check", "--annotate", out, path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "only .docx is supported")
	assert.NoFileExists(t, out)
}

func TestCheckCmd_AnnotateWritesDocx(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.result = sampleResult()
	ts.report.annotated = []byte("annotated-bytes")
	path := writeTempFile(t, "policy.docx", "text")
	out := filepath.Join(t.TempDir(), "out.docx")

	output, err := executeCommand(t, "check", "--annotate", out, path)

	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "annotated-bytes", string(data))
	assert.Contains(t, output, "Annotated document written to")
}

func TestCheckCmd_NoService(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, err := executeCommand(t, "check", "x.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation service not configured")
}

func TestClassifyCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.docType = domain.DocumentTypeArticlesOfAssociation
	path := writeTempFile(t, "articles.txt", "Articles of Association of Acme Ltd")

	out, err := executeCommand(t, "classify", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Articles of Association (articles_of_association)")
	assert.NotContains(t, out, "not supported")
}

func TestClassifyCmd_UnknownJSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.docType = domain.DocumentTypeUnknown
	path := writeTempFile(t, "recipe.txt", "Preheat the oven")

	out, err := executeCommand(t, "classify", "--json", path)

	require.NoError(t, err)
	assert.Contains(t, out, `"documentType": "unknown"`)
	assert.Contains(t, out, `"supported": false`)
}

func TestChecklistCmd_ListsTypes(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "checklist")

	require.NoError(t, err)
	for _, dt := range domain.KnownDocumentTypes() {
		assert.Contains(t, out, string(dt))
	}
}

func TestChecklistCmd_ShowsRules(t *testing.T) {
	ts := setupTestServices(t)
	ts.evaluation.rules = []domain.ChecklistRule{
		{ID: "sa-parties", Description: "Identifies the parties", Required: true},
		{ID: "sa-subprocessors", Description: "Lists subprocessors", AppliesWhen: []string{"personal data"}},
	}

	out, err := executeCommand(t, "checklist", "service agreement")

	require.NoError(t, err)
	assert.Contains(t, out, "sa-parties")
	assert.Contains(t, out, "sa-subprocessors")
	assert.Contains(t, out, "personal data")
}

func TestChecklistCmd_UnknownType(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "checklist", "cookbook")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownDocumentType))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b c", truncate("a\n b \t c", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
