package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingStatus_IsValid(t *testing.T) {
	for _, s := range []FindingStatus{StatusSatisfied, StatusPartiallySatisfied, StatusMissing, StatusNotApplicable} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, FindingStatus("maybe").IsValid())
}

func TestParseFindingStatus(t *testing.T) {
	tests := []struct {
		label    string
		expected FindingStatus
	}{
		{"satisfied", StatusSatisfied},
		{"Satisfied", StatusSatisfied},
		{"PARTIAL", StatusPartiallySatisfied},
		{"Partially satisfied", StatusPartiallySatisfied},
		{"missing", StatusMissing},
		{"N/A", StatusNotApplicable},
		{"not applicable", StatusNotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseFindingStatus(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseFindingStatus("probably")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewDegradedFinding(t *testing.T) {
	rule := ChecklistRule{ID: "registered-office", Description: "Registered office address is specified"}
	f := NewDegradedFinding(rule, errors.New("boom"))

	assert.Equal(t, "registered-office", f.RuleID)
	assert.Equal(t, StatusMissing, f.Status)
	assert.True(t, f.Degraded)
	assert.Contains(t, f.Explanation, "boom")
	assert.Empty(t, f.Citations)
}

func TestNewEvaluationResult_Summary(t *testing.T) {
	findings := []Finding{
		{RuleID: "a", Status: StatusSatisfied},
		{RuleID: "b", Status: StatusMissing, Degraded: true},
		{RuleID: "c", Status: StatusPartiallySatisfied},
		{RuleID: "d", Status: StatusMissing},
		{RuleID: "e", Status: StatusNotApplicable},
	}

	r := NewEvaluationResult(DocumentTypeArticlesOfAssociation, findings)

	assert.Equal(t, Summary{Satisfied: 1, Partial: 1, Missing: 2, NotApplicable: 1}, r.Summary)
	assert.Equal(t, len(findings), r.Summary.Total())
	assert.Equal(t, 1, r.DegradedCount())
	assert.Len(t, r.Issues(), 4)

	f, ok := r.Finding("C")
	require.True(t, ok)
	assert.Equal(t, StatusPartiallySatisfied, f.Status)
	_, ok = r.Finding("z")
	assert.False(t, ok)
}
