package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"tally/internal/inventory"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiMagenta = "\x1b[35m"
)

func statusColor(status inventory.Status) string {
	switch status {
	case inventory.StatusInStock:
		return ansiGreen
	case inventory.StatusLoanedOut:
		return ansiYellow
	case inventory.StatusDisposed:
		return ansiRed
	case inventory.StatusSuspectedMissing:
		return ansiMagenta
	default:
		return ""
	}
}

func renderStatus(status inventory.Status, colorize bool) string {
	label := status.Label()
	if !colorize {
		return label
	}
	color := statusColor(status)
	if color == "" {
		return label
	}
	return color + label + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
