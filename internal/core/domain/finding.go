package domain

import (
	"fmt"
	"strings"
)

// FindingStatus is the verdict for a single checklist rule.
type FindingStatus string

// Available finding statuses.
const (
	// StatusSatisfied means clear evidence of the requirement was found.
	StatusSatisfied FindingStatus = "satisfied"

	// StatusPartiallySatisfied means some but not all sub-elements are present.
	StatusPartiallySatisfied FindingStatus = "partially_satisfied"

	// StatusMissing means no evidence was found for a required rule.
	StatusMissing FindingStatus = "missing"

	// StatusNotApplicable means the rule does not apply to this document.
	StatusNotApplicable FindingStatus = "not_applicable"
)

// IsValid returns true if the status is recognised.
func (s FindingStatus) IsValid() bool {
	switch s {
	case StatusSatisfied, StatusPartiallySatisfied, StatusMissing, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s FindingStatus) String() string {
	return string(s)
}

// Label returns the human-readable status.
func (s FindingStatus) Label() string {
	switch s {
	case StatusSatisfied:
		return "Satisfied"
	case StatusPartiallySatisfied:
		return "Partially satisfied"
	case StatusMissing:
		return "Missing"
	case StatusNotApplicable:
		return "Not applicable"
	default:
		return unknownDescription
	}
}

// ParseFindingStatus maps a free-form status label onto a FindingStatus.
// It accepts the canonical values, their labels and the common short
// forms "partial" and "n/a".
func ParseFindingStatus(label string) (FindingStatus, error) {
	switch slugify(label) {
	case "satisfied", "met", "present":
		return StatusSatisfied, nil
	case "partially_satisfied", "partial", "partially_met":
		return StatusPartiallySatisfied, nil
	case "missing", "not_satisfied", "absent":
		return StatusMissing, nil
	case "not_applicable", "n_a", "na":
		return StatusNotApplicable, nil
	default:
		return "", fmt.Errorf("%w: unknown finding status %q", ErrInvalidInput, label)
	}
}

// Finding is the verdict for one checklist rule. It is immutable once built.
type Finding struct {
	// RuleID is the evaluated rule.
	RuleID string

	// Requirement is the rule description, carried for reporting.
	Requirement string

	// Status is the verdict.
	Status FindingStatus

	// Citations support the verdict, most relevant first.
	Citations []Citation

	// Explanation is a short human-readable justification.
	Explanation string

	// Degraded marks a finding produced after an internal failure rather
	// than an actual evaluation of the document.
	Degraded bool
}

// NewDegradedFinding builds the Missing finding recorded when evaluating
// a rule failed internally.
func NewDegradedFinding(rule ChecklistRule, cause error) Finding {
	return Finding{
		RuleID:      rule.ID,
		Requirement: rule.Description,
		Status:      StatusMissing,
		Explanation: fmt.Sprintf("Could not evaluate this requirement (internal error: %v).", cause),
		Degraded:    true,
	}
}

// Summary counts findings per status.
type Summary struct {
	Satisfied     int
	Partial       int
	Missing       int
	NotApplicable int
}

// Total returns the number of findings counted.
func (s Summary) Total() int {
	return s.Satisfied + s.Partial + s.Missing + s.NotApplicable
}

// Summarise counts the findings per status.
func Summarise(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Status {
		case StatusSatisfied:
			s.Satisfied++
		case StatusPartiallySatisfied:
			s.Partial++
		case StatusMissing:
			s.Missing++
		case StatusNotApplicable:
			s.NotApplicable++
		}
	}
	return s
}

// EvaluationResult holds every finding for one document.
type EvaluationResult struct {
	// DocumentType is the classified type.
	DocumentType DocumentType

	// Findings are in checklist order, one per rule.
	Findings []Finding

	// Summary counts findings per status.
	Summary Summary
}

// NewEvaluationResult assembles a result and computes its summary.
func NewEvaluationResult(docType DocumentType, findings []Finding) *EvaluationResult {
	return &EvaluationResult{
		DocumentType: docType,
		Findings:     findings,
		Summary:      Summarise(findings),
	}
}

// DegradedCount returns how many findings were produced after internal failures.
func (r *EvaluationResult) DegradedCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Degraded {
			n++
		}
	}
	return n
}

// Issues returns the findings that are not satisfied, in checklist order.
func (r *EvaluationResult) Issues() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Status != StatusSatisfied {
			out = append(out, f)
		}
	}
	return out
}

// Finding returns the finding for a rule id.
func (r *EvaluationResult) Finding(ruleID string) (Finding, bool) {
	for _, f := range r.Findings {
		if strings.EqualFold(f.RuleID, ruleID) {
			return f, true
		}
	}
	return Finding{}, false
}
