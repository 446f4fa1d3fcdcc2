package domain

import (
	"fmt"
	"strings"
)

// RuleElement is one piece of evidence a rule looks for. The element is
// present when any of its phrases occurs in the document.
type RuleElement struct {
	// Name is a short label used in explanations (e.g. "registered address").
	Name string

	// Phrases are alternative wordings, matched case-insensitively.
	Phrases []string
}

// ChecklistRule is a single compliance requirement for a document type.
// Rules are static: loaded once at startup and never mutated.
type ChecklistRule struct {
	// ID is unique within the document type's checklist.
	ID string

	// DocumentType is the checklist this rule belongs to.
	DocumentType DocumentType

	// Description is the human-readable requirement. It doubles as the
	// retrieval query for supporting citations.
	Description string

	// Required marks whether absence is a defect.
	Required bool

	// Elements are the sub-elements checked by the heuristic matcher.
	// A rule is fully satisfied when every element is present.
	Elements []RuleElement

	// AppliesWhen lists marker phrases for conditional rules. When set and
	// none of the markers occurs in the document, the rule does not apply.
	AppliesWhen []string
}

// IsConditional returns true if the rule only applies when its markers are present.
func (r ChecklistRule) IsConditional() bool {
	return len(r.AppliesWhen) > 0
}

// Validate checks the rule is well formed.
func (r ChecklistRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: rule id is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: rule %q has no description", ErrInvalidInput, r.ID)
	}
	if !r.DocumentType.IsValid() {
		return fmt.Errorf("%w: rule %q has invalid document type %q", ErrInvalidInput, r.ID, r.DocumentType)
	}
	for i, el := range r.Elements {
		if len(el.Phrases) == 0 {
			return fmt.Errorf("%w: rule %q element %d has no phrases", ErrInvalidInput, r.ID, i)
		}
	}
	return nil
}

// Checklist is the ordered set of rules for one document type.
type Checklist struct {
	// DocumentType is the type the checklist applies to.
	DocumentType DocumentType

	// Rules are in evaluation and reporting order.
	Rules []ChecklistRule
}

// Validate checks the checklist is non-empty, every rule is valid and
// belongs to this checklist, and no rule id repeats.
func (c Checklist) Validate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: checklist %q is empty", ErrInvalidInput, c.DocumentType)
	}
	seen := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if r.DocumentType != c.DocumentType {
			return fmt.Errorf("%w: rule %q belongs to %q, not %q",
				ErrInvalidInput, r.ID, r.DocumentType, c.DocumentType)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate rule id %q in checklist %q", ErrInvalidInput, r.ID, c.DocumentType)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// ClassificationProfile describes how to recognise a document type from its text.
type ClassificationProfile struct {
	// DocumentType is the type this profile identifies.
	DocumentType DocumentType

	// Priority orders profiles; lower values are checked first.
	Priority int

	// Markers are groups of alternative phrases. A document matches the
	// profile when every group has at least one phrase present.
	Markers [][]string

	// Keywords feed the fallback score: each keyword present adds one.
	Keywords []string
}
