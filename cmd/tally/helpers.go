package main

import (
	"strings"
	"time"

	"tally/internal/inventory"
	"tally/internal/textutil"
)

const timestampLayout = "2006-01-02 15:04"

// formatLocalTime renders a wire timestamp in the operator's timezone.
func formatLocalTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(time.Local).Format(timestampLayout)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func refName(ref *inventory.Ref) string {
	if ref == nil {
		return "-"
	}
	return textutil.TitleLabel(ref.Name)
}

func remarkCell(remarks string) string {
	return orDash(textutil.Truncate(remarks, 40))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
