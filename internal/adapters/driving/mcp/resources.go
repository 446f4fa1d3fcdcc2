package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for clausecheck resources.
	uriScheme = "clausecheck://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing checklists.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "checklists",
		Name:        "checklists",
		Description: "Document types that have a compliance checklist",
		MIMEType:    "application/json",
	}, s.handleChecklistsResource)

	// Template for the rules of one checklist.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "checklists/{documentType}",
		Name:        "checklist-rules",
		Description: "Rules evaluated for a document type",
		MIMEType:    "application/json",
	}, s.handleChecklistResource)
}

// handleChecklistsResource lists the document types with a checklist.
func (s *Server) handleChecklistsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type checklistInfo struct {
		DocumentType string `json:"document_type"`
		Name         string `json:"name"`
		URI          string `json:"uri"`
	}

	types := s.ports.Evaluation.DocumentTypes()
	infos := make([]checklistInfo, len(types))
	for i, t := range types {
		infos[i] = checklistInfo{
			DocumentType: string(t),
			Name:         t.DisplayName(),
			URI:          uriScheme + "checklists/" + string(t),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleChecklistResource returns the rules for one document type.
func (s *Server) handleChecklistResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the type from URI: clausecheck://checklists/{documentType}
	label := extractDocumentType(req.Params.URI)
	if label == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rules, err := s.ports.Evaluation.Checklist(domain.ParseDocumentType(label))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type ruleInfo struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Required    bool     `json:"required"`
		AppliesWhen []string `json:"applies_when,omitempty"`
	}

	infos := make([]ruleInfo, len(rules))
	for i, r := range rules {
		infos[i] = ruleInfo{
			ID:          r.ID,
			Description: r.Description,
			Required:    r.Required,
			AppliesWhen: r.AppliesWhen,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentType extracts the type from a URI like clausecheck://checklists/{documentType}.
func extractDocumentType(uri string) string {
	const prefix = uriScheme + "checklists/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.Trim(strings.TrimPrefix(uri, prefix), "/")
}
