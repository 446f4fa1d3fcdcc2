package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/checklist"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	reg, err := checklist.Default()
	require.NoError(t, err)
	return New(reg.Profiles())
}

func TestClassifier_Name(t *testing.T) {
	assert.Equal(t, "keyword", New(nil).Name())
}

func TestClassifier_BuiltinProfiles(t *testing.T) {
	c := newDefaultClassifier(t)

	tests := []struct {
		name string
		text string
		want domain.DocumentType
	}{
		{
			name: "articles of association",
			text: "ARTICLES OF ASSOCIATION of Example Ltd. The share capital of the company is GBP 100 divided into 100 shares.",
			want: domain.DocumentTypeArticlesOfAssociation,
		},
		{
			name: "service agreement",
			text: "This Service Agreement is made between the Client and the Provider. The services provided are described in Schedule 1. Payment terms: 30 days.",
			want: domain.DocumentTypeServiceAgreement,
		},
		{
			name: "privacy policy",
			text: "Privacy Policy. We process personal data in accordance with data protection law.",
			want: domain.DocumentTypePrivacyPolicy,
		},
		{
			name: "empty",
			text: "",
			want: domain.DocumentTypeUnknown,
		},
		{
			name: "punctuation only",
			text: " ... ;; ",
			want: domain.DocumentTypeUnknown,
		},
		{
			name: "unrelated",
			text: "Grocery list: apples, pears, bread.",
			want: domain.DocumentTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(context.Background(), tt.text))
		})
	}
}

func TestClassifier_PriorityOrder(t *testing.T) {
	profiles := []domain.ClassificationProfile{
		{
			DocumentType: domain.DocumentTypeArticlesOfAssociation,
			Priority:     1,
			Markers:      [][]string{{"alpha"}},
		},
		{
			DocumentType: domain.DocumentTypePrivacyPolicy,
			Priority:     2,
			Markers:      [][]string{{"alpha"}},
		},
	}
	c := New(profiles)

	assert.Equal(t, domain.DocumentTypeArticlesOfAssociation, c.Classify(context.Background(), "alpha beta"))
}

func TestClassifier_AllMarkerGroupsRequired(t *testing.T) {
	c := New([]domain.ClassificationProfile{{
		DocumentType: domain.DocumentTypeArticlesOfAssociation,
		Markers:      [][]string{{"articles of association"}, {"shareholder"}},
	}})

	assert.Equal(t, domain.DocumentTypeUnknown, c.Classify(context.Background(), "Articles of Association"))
	assert.Equal(t, domain.DocumentTypeArticlesOfAssociation,
		c.Classify(context.Background(), "Articles of Association. Each shareholder has one vote."))
}

func TestClassifier_KeywordScoring(t *testing.T) {
	c := New([]domain.ClassificationProfile{
		{
			DocumentType: domain.DocumentTypeServiceAgreement,
			Markers:      [][]string{{"never present"}},
			Keywords:     []string{"payment terms", "termination clause", "services provided"},
		},
		{
			DocumentType: domain.DocumentTypePrivacyPolicy,
			Markers:      [][]string{{"never present"}},
			Keywords:     []string{"personal data", "user rights"},
		},
	})
	ctx := context.Background()

	assert.Equal(t, domain.DocumentTypeServiceAgreement,
		c.Classify(ctx, "Payment terms and the termination clause apply."))
	assert.Equal(t, domain.DocumentTypeUnknown,
		c.Classify(ctx, "Payment terms only."), "one hit is not decisive")
	assert.Equal(t, domain.DocumentTypeUnknown,
		c.Classify(ctx, "Payment terms, termination clause, personal data and user rights."), "ties are not decisive")
}

func TestClassifier_DoesNotAliasProfiles(t *testing.T) {
	profiles := []domain.ClassificationProfile{{
		DocumentType: domain.DocumentTypePrivacyPolicy,
		Markers:      [][]string{{"privacy"}},
	}}
	c := New(profiles)
	profiles[0].DocumentType = domain.DocumentTypeServiceAgreement

	assert.Equal(t, domain.DocumentTypePrivacyPolicy, c.Classify(context.Background(), "privacy"))
}
