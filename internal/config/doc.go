// Package config loads, normalizes, and validates the TOML configuration
// shared by the tally CLI and the tallyd scan-station daemon.
package config
