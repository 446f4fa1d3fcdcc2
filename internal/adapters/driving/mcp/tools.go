package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// DefaultTopK is the number of citations returned when the caller does not ask.
const DefaultTopK = 5

// DocumentInput is the input schema for the evaluate and classify tools.
type DocumentInput struct {
	Text string `json:"text,omitempty" jsonschema:"the document text"`
	Path string `json:"path,omitempty" jsonschema:"path to a .txt, .html, .pdf or .docx file, used when text is empty"`
}

// EvaluateOutput is the output schema for the evaluate_document tool.
type EvaluateOutput struct {
	DocumentType string          `json:"document_type"`
	Findings     []FindingOutput `json:"findings"`
	Summary      SummaryOutput   `json:"summary"`
}

// FindingOutput represents one checklist finding.
type FindingOutput struct {
	RuleID      string           `json:"rule_id"`
	Requirement string           `json:"requirement"`
	Status      string           `json:"status"`
	Explanation string           `json:"explanation"`
	Degraded    bool             `json:"degraded,omitempty"`
	Citations   []CitationOutput `json:"citations,omitempty"`
}

// SummaryOutput counts findings per status.
type SummaryOutput struct {
	Satisfied     int `json:"satisfied"`
	Partial       int `json:"partial"`
	Missing       int `json:"missing"`
	NotApplicable int `json:"not_applicable"`
}

// ClassifyOutput is the output schema for the classify_document tool.
type ClassifyOutput struct {
	DocumentType string `json:"document_type"`
	DisplayName  string `json:"display_name"`
	Supported    bool   `json:"supported"`
}

// CitationsInput is the input schema for the retrieve_citations tool.
type CitationsInput struct {
	Query string `json:"query" jsonschema:"the requirement or question to find regulation for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of citations to return (default 5)"`
}

// CitationsOutput is the output schema for the retrieve_citations tool.
type CitationsOutput struct {
	Citations []CitationOutput `json:"citations"`
	Count     int              `json:"count"`
}

// CitationOutput represents a single regulatory citation.
type CitationOutput struct {
	SourceID string  `json:"source_id"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_document",
		Description: "Classify a legal document and check it against the compliance checklist for its type",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_document",
		Description: "Identify the type of a legal document",
	}, s.handleClassify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_citations",
		Description: "Find regulatory passages relevant to a requirement",
	}, s.handleCitations)
}

// handleEvaluate handles the evaluate_document tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, EvaluateOutput, error) {
	text, err := s.documentText(ctx, input)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	result, err := s.ports.Evaluation.Evaluate(ctx, text)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	output := EvaluateOutput{
		DocumentType: string(result.DocumentType),
		Findings:     make([]FindingOutput, len(result.Findings)),
		Summary: SummaryOutput{
			Satisfied:     result.Summary.Satisfied,
			Partial:       result.Summary.Partial,
			Missing:       result.Summary.Missing,
			NotApplicable: result.Summary.NotApplicable,
		},
	}
	for i, f := range result.Findings {
		output.Findings[i] = FindingOutput{
			RuleID:      f.RuleID,
			Requirement: f.Requirement,
			Status:      string(f.Status),
			Explanation: f.Explanation,
			Degraded:    f.Degraded,
			Citations:   toCitationOutputs(f.Citations),
		}
	}

	return nil, output, nil
}

// handleClassify handles the classify_document tool invocation.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	text, err := s.documentText(ctx, input)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}

	docType := s.ports.Evaluation.Classify(ctx, text)
	return nil, ClassifyOutput{
		DocumentType: string(docType),
		DisplayName:  docType.DisplayName(),
		Supported:    docType.IsKnown(),
	}, nil
}

// handleCitations handles the retrieve_citations tool invocation.
func (s *Server) handleCitations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CitationsInput,
) (*mcp.CallToolResult, CitationsOutput, error) {
	if s.ports.Corpus == nil {
		return nil, CitationsOutput{}, ErrCorpusNotConfigured
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	citations, err := s.ports.Corpus.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, CitationsOutput{}, err
	}

	return nil, CitationsOutput{
		Citations: toCitationOutputs(citations),
		Count:     len(citations),
	}, nil
}

// documentText returns the inline text, or reads the file at Path.
func (s *Server) documentText(ctx context.Context, input DocumentInput) (string, error) {
	if input.Text != "" {
		return input.Text, nil
	}
	if input.Path == "" {
		return "", ErrNoInput
	}
	if s.ports.Documents == nil {
		return "", fmt.Errorf("%w: reading files is not enabled", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", input.Path, err)
	}

	doc, err := s.ports.Documents.Read(ctx, domain.RawDocument{
		URI:      filepath.Clean(input.Path),
		MIMEType: normalisers.DetectMIME(input.Path),
		Content:  data,
	})
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

func toCitationOutputs(citations []domain.Citation) []CitationOutput {
	out := make([]CitationOutput, len(citations))
	for i, c := range citations {
		out[i] = CitationOutput{SourceID: c.SourceID, Excerpt: c.Excerpt, Score: c.Score}
	}
	return out
}
