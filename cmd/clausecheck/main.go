// Command clausecheck evaluates corporate legal documents against
// compliance checklists and cites the regulation behind each finding.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/cli"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal; variables may come from the shell.
	_ = godotenv.Load()

	cli.SetVersion(version)

	app, err := newApp(appConfig{})
	if err != nil {
		logger.Warn("startup failed: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	cli.SetServices(app.Services)

	if err := cli.Execute(); err != nil {
		app.Close()
		os.Exit(1)
	}
}
