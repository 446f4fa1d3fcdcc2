// Package keyword implements a deterministic document classifier based on
// marker phrases.
package keyword

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/textnorm"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// MinKeywordHits is the keyword count a type needs to win on scoring alone.
const MinKeywordHits = 2

// Classifier matches profiles in priority order. The first profile whose
// marker groups are all present wins. When none match, the type with the
// most keyword hits wins if the lead is unique and reaches MinKeywordHits.
type Classifier struct {
	profiles []domain.ClassificationProfile
}

// New creates a classifier from the profiles of a checklist registry.
func New(profiles []domain.ClassificationProfile) *Classifier {
	ps := make([]domain.ClassificationProfile, len(profiles))
	copy(ps, profiles)
	return &Classifier{profiles: ps}
}

// Name returns the classifier name.
func (c *Classifier) Name() string {
	return "keyword"
}

// Classify returns the document type for the given text.
func (c *Classifier) Classify(_ context.Context, text string) domain.DocumentType {
	doc := textnorm.New(text)
	if doc.Empty() {
		return domain.DocumentTypeUnknown
	}

	for _, p := range c.profiles {
		if matchesMarkers(doc, p.Markers) {
			logger.Debug("keyword classifier: %s matched markers", p.DocumentType)
			return p.DocumentType
		}
	}

	return c.score(doc)
}

func (c *Classifier) score(doc textnorm.Text) domain.DocumentType {
	best := domain.DocumentTypeUnknown
	bestHits := 0
	tie := false

	for _, p := range c.profiles {
		hits := doc.Count(p.Keywords)
		switch {
		case hits > bestHits:
			best, bestHits, tie = p.DocumentType, hits, false
		case hits == bestHits && hits > 0:
			tie = true
		}
	}

	if tie || bestHits < MinKeywordHits {
		logger.Debug("keyword classifier: no decisive keywords (best=%s hits=%d tie=%v)", best, bestHits, tie)
		return domain.DocumentTypeUnknown
	}
	logger.Debug("keyword classifier: %s scored %d keyword hits", best, bestHits)
	return best
}

func matchesMarkers(doc textnorm.Text, groups [][]string) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if !doc.ContainsAny(g) {
			return false
		}
	}
	return true
}
