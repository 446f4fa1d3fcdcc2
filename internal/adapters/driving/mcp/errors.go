// Package mcp provides an MCP (Model Context Protocol) server adapter for clausecheck.
// It lets AI assistants evaluate documents against the compliance checklists
// and look up regulatory citations.
package mcp

import "errors"

// ErrMissingEvaluationService is returned when the evaluation service is not provided.
var ErrMissingEvaluationService = errors.New("mcp: evaluation service is required")

// ErrCorpusNotConfigured is returned by retrieve_citations when no corpus is wired.
var ErrCorpusNotConfigured = errors.New("mcp: corpus service is not configured")

// ErrNoInput is returned when a tool receives neither text nor a path.
var ErrNoInput = errors.New("mcp: either text or path is required")
