// Package keyword implements a deterministic clause matcher that looks for
// the wording of each rule element in the document.
package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/textnorm"
)

// Ensure Matcher implements the interface.
var _ driven.ClauseMatcher = (*Matcher)(nil)

// Matcher decides a rule from element coverage:
//
//	conditional rule, no marker present  -> not applicable
//	every element present                -> satisfied
//	some elements present                -> partially satisfied
//	nothing present, rule required       -> missing
//	nothing present, rule optional       -> not applicable
//
// A rule without elements is checked against its own description.
type Matcher struct{}

// New creates a keyword matcher.
func New() *Matcher {
	return &Matcher{}
}

// Name returns the matcher name.
func (m *Matcher) Name() string {
	return "keyword"
}

// Match evaluates a single rule against the document text.
func (m *Matcher) Match(
	ctx context.Context,
	text string,
	rule domain.ChecklistRule,
	citations []domain.Citation,
) (domain.Finding, error) {
	if err := ctx.Err(); err != nil {
		return domain.Finding{}, err
	}
	return m.MatchText(textnorm.New(text), rule, citations), nil
}

// MatchText evaluates a rule against text that has already been normalised.
func (m *Matcher) MatchText(doc textnorm.Text, rule domain.ChecklistRule, citations []domain.Citation) domain.Finding {
	finding := domain.Finding{
		RuleID:      rule.ID,
		Requirement: rule.Description,
		Citations:   citations,
	}

	if rule.IsConditional() && !doc.ContainsAny(rule.AppliesWhen) {
		finding.Status = domain.StatusNotApplicable
		finding.Explanation = "The document does not mention what this rule depends on, so it does not apply."
		return finding
	}

	elements := rule.Elements
	if len(elements) == 0 {
		elements = []domain.RuleElement{{Name: rule.Description, Phrases: []string{rule.Description}}}
	}

	var found, absent []string
	for _, el := range elements {
		if doc.ContainsAny(el.Phrases) {
			found = append(found, el.Name)
		} else {
			absent = append(absent, el.Name)
		}
	}

	switch {
	case len(absent) == 0:
		finding.Status = domain.StatusSatisfied
		finding.Explanation = fmt.Sprintf("Found wording for %s.", joinNames(found))
	case len(found) > 0:
		finding.Status = domain.StatusPartiallySatisfied
		finding.Explanation = fmt.Sprintf("Found wording for %s but not for %s.", joinNames(found), joinNames(absent))
	case rule.Required:
		finding.Status = domain.StatusMissing
		finding.Explanation = fmt.Sprintf("No wording found for %s.", joinNames(absent))
	default:
		finding.Status = domain.StatusNotApplicable
		finding.Explanation = "Optional clause not present."
	}
	return finding
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
