// Package textnorm normalises document text for phrase matching.
//
// Both the keyword classifier and the keyword matcher compare phrases
// against the same normalised form, so "Registered Office:" and
// "registered  office" are indistinguishable.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Stem marks a phrase whose last word may continue, as in "indemnif*".
const Stem = "*"

// Normalise applies NFKC, folds case, turns punctuation and symbols into
// spaces and collapses runs of whitespace. The result has no leading or
// trailing space.
func Normalise(s string) string {
	if s == "" {
		return ""
	}
	// A Caser is not safe for concurrent use.
	folded := cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Text is a normalised document ready for repeated phrase lookups.
type Text struct {
	norm string
}

// New normalises s once for many lookups.
func New(s string) Text {
	return Text{norm: " " + Normalise(s) + " "}
}

// Empty reports whether the text has no letters or digits.
func (t Text) Empty() bool {
	return strings.TrimSpace(t.norm) == ""
}

// String returns the normalised text.
func (t Text) String() string {
	return strings.TrimSpace(t.norm)
}

// Contains reports whether phrase occurs in the text as whole words.
// A phrase ending in Stem matches its last word as a prefix, so
// "dividend*" matches "dividends" while "fee" does not match "feedback".
func (t Text) Contains(phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	stem := strings.HasSuffix(phrase, Stem)
	p := Normalise(strings.TrimSuffix(phrase, Stem))
	if p == "" {
		return false
	}
	if stem {
		return strings.Contains(t.norm, " "+p)
	}
	return strings.Contains(t.norm, " "+p+" ")
}

// ContainsAny reports whether any phrase occurs in the text.
func (t Text) ContainsAny(phrases []string) bool {
	for _, p := range phrases {
		if t.Contains(p) {
			return true
		}
	}
	return false
}

// Count returns the number of phrases that occur at least once.
func (t Text) Count(phrases []string) int {
	n := 0
	for _, p := range phrases {
		if t.Contains(p) {
			n++
		}
	}
	return n
}
