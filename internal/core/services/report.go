package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// minAnchorWordLen filters requirement words too common to locate a paragraph.
const minAnchorWordLen = 6

// Report is the machine-readable evaluation report.
type Report struct {
	DocumentType string          `json:"documentType"`
	Findings     []ReportFinding `json:"findings"`
	Summary      ReportSummary   `json:"summary"`
}

// ReportFinding is one finding in a Report.
type ReportFinding struct {
	RuleID      string           `json:"ruleId"`
	Requirement string           `json:"requirement"`
	Status      string           `json:"status"`
	Explanation string           `json:"explanation"`
	Degraded    bool             `json:"degraded,omitempty"`
	Citations   []ReportCitation `json:"citations"`
}

// ReportCitation is one citation in a Report.
type ReportCitation struct {
	SourceID string  `json:"sourceId"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"score"`
}

// ReportSummary counts findings per status.
type ReportSummary struct {
	Satisfied     int `json:"satisfied"`
	Partial       int `json:"partial"`
	Missing       int `json:"missing"`
	NotApplicable int `json:"notApplicable"`
}

// NewReport converts an evaluation result into its report form.
func NewReport(result *domain.EvaluationResult) Report {
	r := Report{
		DocumentType: string(result.DocumentType),
		Findings:     make([]ReportFinding, len(result.Findings)),
		Summary: ReportSummary{
			Satisfied:     result.Summary.Satisfied,
			Partial:       result.Summary.Partial,
			Missing:       result.Summary.Missing,
			NotApplicable: result.Summary.NotApplicable,
		},
	}
	for i, f := range result.Findings {
		citations := make([]ReportCitation, len(f.Citations))
		for j, c := range f.Citations {
			citations[j] = ReportCitation{SourceID: c.SourceID, Excerpt: c.Excerpt, Score: c.Score}
		}
		r.Findings[i] = ReportFinding{
			RuleID:      f.RuleID,
			Requirement: f.Requirement,
			Status:      string(f.Status),
			Explanation: f.Explanation,
			Degraded:    f.Degraded,
			Citations:   citations,
		}
	}
	return r
}

// ReportService renders evaluation results as JSON or annotated documents.
type ReportService struct {
	registry   driven.ChecklistRegistry
	annotators []driven.Annotator
}

// NewReportService creates a report service. The registry supplies the
// evidence phrases used to place annotations and may be nil.
func NewReportService(registry driven.ChecklistRegistry, annotators ...driven.Annotator) *ReportService {
	return &ReportService{registry: registry, annotators: annotators}
}

// JSON renders the machine-readable report.
func (s *ReportService) JSON(result *domain.EvaluationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no evaluation result", domain.ErrInvalidInput)
	}
	data, err := json.MarshalIndent(NewReport(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// CanAnnotate reports whether documents of the MIME type can be annotated.
func (s *ReportService) CanAnnotate(mimeType string) bool {
	return s.annotatorFor(mimeType) != nil
}

// Annotate returns a copy of the source document with one note per
// non-satisfied finding.
func (s *ReportService) Annotate(
	ctx context.Context,
	mimeType string,
	source []byte,
	result *domain.EvaluationResult,
) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no evaluation result", domain.ErrInvalidInput)
	}
	annotator := s.annotatorFor(mimeType)
	if annotator == nil {
		return nil, fmt.Errorf("%w: cannot annotate %s", domain.ErrUnsupportedType, mimeType)
	}

	issues := result.Issues()
	notes := make([]driven.AnnotationNote, 0, len(issues))
	for _, f := range issues {
		notes = append(notes, driven.AnnotationNote{
			Finding: f,
			Anchors: s.anchors(result.DocumentType, f),
			Text:    NoteText(f),
		})
	}

	out, err := annotator.Annotate(ctx, source, notes)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return out, nil
}

func (s *ReportService) annotatorFor(mimeType string) driven.Annotator {
	for _, a := range s.annotators {
		for _, mt := range a.SupportedMIMETypes() {
			if strings.EqualFold(mt, mimeType) {
				return a
			}
		}
	}
	return nil
}

// anchors lists the rule's evidence phrases, then the significant words of
// its requirement.
func (s *ReportService) anchors(docType domain.DocumentType, f domain.Finding) []string {
	var anchors []string
	if s.registry != nil {
		if rules, err := s.registry.RulesFor(docType); err == nil {
			for _, r := range rules {
				if r.ID != f.RuleID {
					continue
				}
				for _, el := range r.Elements {
					anchors = append(anchors, el.Phrases...)
				}
				anchors = append(anchors, r.AppliesWhen...)
				break
			}
		}
	}
	for _, w := range strings.FieldsFunc(f.Requirement, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	}) {
		if utf8.RuneCountInString(w) >= minAnchorWordLen {
			anchors = append(anchors, strings.ToLower(w))
		}
	}
	return anchors
}

// NoteText renders the annotation for a finding:
//
//	[Missing: Registered office address is specified. No wording found for registered office. | Related law: ...]
func NoteText(f domain.Finding) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(f.Status.Label())
	b.WriteString(": ")
	b.WriteString(strings.TrimSuffix(strings.TrimSpace(f.Requirement), "."))
	b.WriteString(".")
	if e := strings.TrimSpace(f.Explanation); e != "" {
		b.WriteString(" ")
		b.WriteString(e)
	}
	if len(f.Citations) > 0 {
		b.WriteString(" | Related law: ")
		b.WriteString(domain.ShortenExcerpt(f.Citations[0].Excerpt, domain.DefaultExcerptLength))
	}
	b.WriteString("]")
	return b.String()
}
