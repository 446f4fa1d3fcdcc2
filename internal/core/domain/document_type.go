package domain

import (
	"strings"
	"unicode"
)

const unknownDescription = "Unknown"

// DocumentType identifies the kind of legal document under evaluation.
// The set is closed: any label that does not map to a known type becomes
// DocumentTypeUnknown.
type DocumentType string

// Known document types.
const (
	// DocumentTypeArticlesOfAssociation is a company constitution.
	DocumentTypeArticlesOfAssociation DocumentType = "articles_of_association"

	// DocumentTypeServiceAgreement is a contract for the provision of services.
	DocumentTypeServiceAgreement DocumentType = "service_agreement"

	// DocumentTypePrivacyPolicy is a public notice on personal data handling.
	DocumentTypePrivacyPolicy DocumentType = "privacy_policy"

	// DocumentTypeUnknown is assigned when classification fails.
	DocumentTypeUnknown DocumentType = "unknown"
)

// documentTypeAliases maps normalised labels to their canonical type.
var documentTypeAliases = map[string]DocumentType{
	"articles_of_association": DocumentTypeArticlesOfAssociation,
	"articles":                DocumentTypeArticlesOfAssociation,
	"aoa":                     DocumentTypeArticlesOfAssociation,
	"company_constitution":    DocumentTypeArticlesOfAssociation,
	"service_agreement":       DocumentTypeServiceAgreement,
	"services_agreement":      DocumentTypeServiceAgreement,
	"service_contract":        DocumentTypeServiceAgreement,
	"privacy_policy":          DocumentTypePrivacyPolicy,
	"privacy_notice":          DocumentTypePrivacyPolicy,
	"unknown":                 DocumentTypeUnknown,
}

// ParseDocumentType maps a free-form label onto the closed set.
// Case, surrounding quotes, punctuation and separators are ignored, so
// "Articles of Association", "articles-of-association" and
// "ARTICLES_OF_ASSOCIATION." all resolve to the same type.
// Anything unrecognised yields DocumentTypeUnknown.
func ParseDocumentType(label string) DocumentType {
	if t, ok := documentTypeAliases[slugify(label)]; ok {
		return t
	}
	return DocumentTypeUnknown
}

func slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// IsValid returns true if the type is a member of the closed set.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeArticlesOfAssociation, DocumentTypeServiceAgreement,
		DocumentTypePrivacyPolicy, DocumentTypeUnknown:
		return true
	default:
		return false
	}
}

// IsKnown returns true for every valid type except DocumentTypeUnknown.
func (t DocumentType) IsKnown() bool {
	return t.IsValid() && t != DocumentTypeUnknown
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// DisplayName returns the human-readable name of the type.
func (t DocumentType) DisplayName() string {
	switch t {
	case DocumentTypeArticlesOfAssociation:
		return "Articles of Association"
	case DocumentTypeServiceAgreement:
		return "Service Agreement"
	case DocumentTypePrivacyPolicy:
		return "Privacy Policy"
	default:
		return unknownDescription
	}
}

// KnownDocumentTypes returns every classifiable type in a stable order.
func KnownDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeArticlesOfAssociation,
		DocumentTypeServiceAgreement,
		DocumentTypePrivacyPolicy,
	}
}
