// Package logging constructs slog loggers with the console and JSON handlers
// shared by the CLI and the scan-station daemon, plus helpers for component
// loggers and context-derived structured fields.
package logging
