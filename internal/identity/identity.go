// Package identity generates durable item identifiers and their derived
// human-scannable short codes.
//
// An item identifier is a random UUID. The short code is the first eight hex
// digits of that UUID, uppercased: fixed length and convenient on printed
// labels, but not collision-free, so lookups by short code must tolerate
// multiple candidates.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// ShortCodeLength is the number of characters in a derived short code.
const ShortCodeLength = 8

// NewItemID returns a freshly generated durable item identifier.
func NewItemID() string {
	return uuid.NewString()
}

// ShortCode derives the fixed-length short code from a full identifier.
// Dashes are ignored so both raw and canonical UUID forms derive the same
// code. Returns an empty string if the identifier is too short.
func ShortCode(id string) string {
	compact := strings.ReplaceAll(strings.TrimSpace(id), "-", "")
	if len(compact) < ShortCodeLength {
		return ""
	}
	return strings.ToUpper(compact[:ShortCodeLength])
}

// LooksLikeShortCode reports whether the input could be a derived short code:
// exactly ShortCodeLength hex digits.
func LooksLikeShortCode(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) != ShortCodeLength {
		return false
	}
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
