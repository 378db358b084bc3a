package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDepot()
	c.normalizeStation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDepot() {
	c.Depot.URL = strings.TrimRight(strings.TrimSpace(c.Depot.URL), "/")
	c.Depot.Token = strings.TrimSpace(c.Depot.Token)
	if c.Depot.Token == "" {
		if value, ok := os.LookupEnv("TALLY_DEPOT_TOKEN"); ok {
			c.Depot.Token = strings.TrimSpace(value)
		}
	}
	if c.Depot.TimeoutSeconds <= 0 {
		c.Depot.TimeoutSeconds = defaultDepotTimeout
	}
}

func (c *Config) normalizeStation() {
	c.Station.CameraDevice = strings.TrimSpace(c.Station.CameraDevice)
	c.Station.DecoderBinary = strings.TrimSpace(c.Station.DecoderBinary)
	if c.Station.DecoderBinary == "" {
		c.Station.DecoderBinary = defaultDecoderBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
