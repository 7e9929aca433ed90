// Package normalize canonicalizes user-entered strings before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace; case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ID trims a business identifier (constituency_id, panchayat_id, ward_id).
// Identifiers are case-sensitive.
func ID(s string) string {
	return strings.TrimSpace(s)
}

// Text trims free text (descriptions, comments). Inner whitespace and
// line breaks are kept.
func Text(s string) string {
	return strings.TrimSpace(s)
}
