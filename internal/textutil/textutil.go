// Package textutil provides small text helpers for rendering labels in CLI
// output.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleLabel renders a machine token ("north-annex", "loaned_out") as a
// human-readable title ("North Annex", "Loaned Out").
func TitleLabel(value string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(value))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return ""
	}
	return titleCaser.String(cleaned)
}

// Truncate shortens a string to max runes, appending an ellipsis when it was
// cut. A max of zero or less returns the input unchanged.
func Truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}
