// Package driving declares the operations the CLI, the HTTP API and the
// MCP server call: evaluating and classifying documents, reading uploads,
// building the citation corpus and managing settings.
//
// internal/core/services implements every interface here.
package driving
