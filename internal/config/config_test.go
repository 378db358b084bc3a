package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tally/internal/config"
)

func TestLoadDefaultsExpandPathsAndReadEnvToken(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TALLY_DEPOT_TOKEN", "env-token")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "tally")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Depot.URL != "http://localhost:5048/api" {
		t.Fatalf("unexpected depot url: %q", cfg.Depot.URL)
	}
	if cfg.Depot.Token != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Depot.Token)
	}
	if cfg.Station.DecoderBinary != "zbarcam" {
		t.Fatalf("unexpected decoder binary: %q", cfg.Station.DecoderBinary)
	}
	if !cfg.Station.Hotplug {
		t.Fatal("expected hotplug enabled by default")
	}
	if cfg.JournalPath() != filepath.Join(wantData, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadParsesFileAndStripsTrailingSlash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[depot]",
		`url = "https://depot.example.com/api/"`,
		`token = "file-token"`,
		"",
		"[station]",
		`camera_device = "/dev/video2"`,
		"debounce_seconds = 5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Depot.URL != "https://depot.example.com/api" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Depot.URL)
	}
	if cfg.Depot.Token != "file-token" {
		t.Fatalf("unexpected token: %q", cfg.Depot.Token)
	}
	if cfg.Station.CameraDevice != "/dev/video2" {
		t.Fatalf("unexpected camera device: %q", cfg.Station.CameraDevice)
	}
	if cfg.Station.DebounceSeconds != 5 {
		t.Fatalf("unexpected debounce: %d", cfg.Station.DebounceSeconds)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty depot url", func(c *config.Config) { c.Depot.URL = "" }},
		{"relative depot url", func(c *config.Config) { c.Depot.URL = "depot.example.com" }},
		{"negative debounce", func(c *config.Config) { c.Station.DebounceSeconds = -1 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Logging.Format = "console"
			cfg.Logging.Level = "info"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[depot]") {
		t.Fatal("sample missing depot section")
	}
}
