// Package classifiers holds the document type classifiers.
//
// The keyword classifier is deterministic and needs no network. The llm
// classifier asks a language model for a label and falls back to unknown
// on any failure.
package classifiers
