// Package cli provides the clausecheck command line interface.
//
// Commands read their dependencies from package-level service variables
// that main wires through SetServices before calling Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

var version = "dev"

var verbose bool

// Services are the driving ports used by commands. Any field may be nil;
// commands that need a missing service fail with a hint.
type Services struct {
	Evaluation driving.EvaluationService
	Report     driving.ReportService
	Document   driving.DocumentService
	Corpus     driving.CorpusService
	Settings   driving.SettingsService
}

var (
	evaluationService driving.EvaluationService
	reportService     driving.ReportService
	documentService   driving.DocumentService
	corpusService     driving.CorpusService
	settingsService   driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "clausecheck",
	Short: "Check legal documents against compliance checklists",
	Long: `clausecheck classifies a corporate legal document, evaluates it against
the checklist for its type and cites the regulation behind each finding.

Build the regulatory corpus once with 'clausecheck corpus index', then run
'clausecheck check <file>'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline debug output to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices wires the services used by commands.
func SetServices(s Services) {
	evaluationService = s.Evaluation
	reportService = s.Report
	documentService = s.Document
	corpusService = s.Corpus
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
