// Package testsupport provides builders for test fixtures shared across
// packages.
package testsupport

import (
	"path/filepath"
	"testing"

	"tally/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Depot.URL = "http://127.0.0.1:0/api"
	cfg.Depot.Token = "test-token"
	cfg.Station.DebounceSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithDepotURL points the test config at a depot base URL, typically an
// httptest server.
func WithDepotURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Depot.URL = url
	}
}

// WithCameraDevice pins the capture device on the test config.
func WithCameraDevice(device string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Station.CameraDevice = device
	}
}

// WithDebounceSeconds sets the scan dedup window on the test config.
func WithDebounceSeconds(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Station.DebounceSeconds = seconds
	}
}
