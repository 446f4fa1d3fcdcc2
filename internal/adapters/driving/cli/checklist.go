package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist [type]",
	Short: "Show the compliance checklists",
	Long: `Without arguments, lists the document types that have a checklist.
With a type (for example "articles_of_association" or "privacy policy"),
prints the rules evaluated for it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChecklist,
}

func init() {
	rootCmd.AddCommand(checklistCmd)
}

func runChecklist(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	if len(args) == 0 {
		for _, t := range evaluationService.DocumentTypes() {
			cmd.Printf("  %-28s %s\n", t, t.DisplayName())
		}
		return nil
	}

	docType := domain.ParseDocumentType(args[0])
	rules, err := evaluationService.Checklist(docType)
	if err != nil {
		return fmt.Errorf("no checklist for %q: %w", args[0], err)
	}

	cmd.Println(styles.Title.Render(docType.DisplayName()))
	cmd.Println()
	rows := make([][]string, len(rules))
	for i, r := range rules {
		required := "yes"
		if !r.Required {
			required = "no"
		}
		when := ""
		if r.IsConditional() {
			when = strings.Join(r.AppliesWhen, ", ")
		}
		rows[i] = []string{r.ID, required, truncate(r.Description, 60), when}
	}
	cmd.Println(renderTable([]string{"RULE", "REQUIRED", "REQUIREMENT", "APPLIES WHEN"}, rows))
	return nil
}
