package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/httpapi"
)

var (
	servePort    int
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the evaluation pipeline.

Endpoints:
  GET  /healthz
  POST /v1/evaluate            JSON {"text": "..."} or multipart field "file"
  POST /v1/evaluate?annotate=1 returns an annotated .docx upload
  POST /v1/classify
  GET  /v1/checklists
  GET  /v1/checklists/{type}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "HTTP port")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "allowed CORS origins (default any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Evaluation: evaluationService,
		Reports:    reportService,
		Documents:  documentService,
	}, httpapi.Config{AllowedOrigins: serveOrigins})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", servePort)
	fmt.Fprintf(cmd.OutOrStdout(), "API listening on http://localhost%s\n", addr)
	return server.Run(ctx, addr)
}
