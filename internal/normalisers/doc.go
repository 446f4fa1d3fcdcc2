// Package normalisers turns raw documents into plain text.
//
// Format-specific normalisers live in sub-packages (plaintext, html, docx,
// pdf). The Registry in this package picks the highest priority normaliser
// registered for a MIME type.
package normalisers
