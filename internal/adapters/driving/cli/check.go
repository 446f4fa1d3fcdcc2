package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// maxExplanationWidth bounds the explanation column of the findings table.
const maxExplanationWidth = 72

var (
	checkJSON     bool
	checkAnnotate string
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Evaluate a document against its compliance checklist",
	Long: `Classifies the document, evaluates every rule of the matching checklist
and prints one finding per rule with citations from the regulatory corpus.

Supported inputs: .txt, .md, .html, .pdf and .docx.

Use --json for the machine-readable report, or --annotate to write a copy
of a .docx document with a note beside each unmet requirement.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output the report as JSON")
	checkCmd.Flags().StringVar(&checkAnnotate, "annotate", "", "write an annotated copy of a .docx document to this path")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	raw, text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := evaluationService.Evaluate(cmd.Context(), text)
	if err != nil {
		if errors.Is(err, domain.ErrRetrievalUnavailable) {
			return fmt.Errorf("%w\nRun 'clausecheck corpus index <file|url>' to build the citation corpus", err)
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if checkAnnotate != "" {
		if err := writeAnnotated(cmd, raw, result, checkAnnotate); err != nil {
			return err
		}
	}

	if checkJSON {
		if reportService == nil {
			return errors.New("report service not configured")
		}
		data, err := reportService.JSON(result)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputFindings(cmd, result)
	return nil
}

// readInput loads a file and extracts its text.
func readInput(cmd *cobra.Command, path string) (*domain.RawDocument, string, error) {
	if documentService == nil {
		return nil, "", errors.New("document service not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	raw := &domain.RawDocument{
		URI:      filepath.Clean(path),
		MIMEType: normalisers.DetectMIME(path),
		Content:  data,
	}
	doc, err := documentService.Read(cmd.Context(), *raw)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document: %w", err)
	}
	return raw, doc.Content, nil
}

func writeAnnotated(cmd *cobra.Command, raw *domain.RawDocument, result *domain.EvaluationResult, out string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	if !reportService.CanAnnotate(raw.MIMEType) {
		return fmt.Errorf("cannot annotate %s documents; only .docx is supported", raw.MIMEType)
	}

	data, err := reportService.Annotate(cmd.Context(), raw.MIMEType, raw.Content, result)
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	cmd.PrintErrf("Annotated document written to %s\n", out)
	return nil
}

func outputFindings(cmd *cobra.Command, result *domain.EvaluationResult) {
	cmd.Println(styles.Title.Render(result.DocumentType.DisplayName()))
	cmd.Println()

	rows := make([][]string, 0, len(result.Findings))
	for _, f := range result.Findings {
		status := f.Status.Label()
		if f.Degraded {
			status += "*"
		}
		rows = append(rows, []string{
			f.RuleID,
			styles.Status(f.Status).Render(status),
			truncate(f.Requirement, 40),
			truncate(f.Explanation, maxExplanationWidth),
		})
	}
	cmd.Println(renderTable([]string{"RULE", "STATUS", "REQUIREMENT", "EXPLANATION"}, rows))
	cmd.Println()

	for _, f := range result.Findings {
		if len(f.Citations) == 0 {
			continue
		}
		cmd.Printf("%s\n", styles.Header.Render(f.RuleID))
		for _, c := range f.Citations {
			cmd.Printf("  %s %s\n", styles.Muted.Render(fmt.Sprintf("[%s %.2f]", c.SourceID, c.Score)),
				domain.ShortenExcerpt(c.Excerpt, 160))
		}
	}

	s := result.Summary
	cmd.Println()
	cmd.Printf("Summary: %d satisfied, %d partial, %d missing, %d not applicable\n",
		s.Satisfied, s.Partial, s.Missing, s.NotApplicable)
	if n := result.DegradedCount(); n > 0 {
		cmd.Println(styles.Warning.Render(fmt.Sprintf("* %d finding(s) could not be fully evaluated", n)))
	}
}

// truncate shortens s to n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
