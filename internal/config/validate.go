package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDepot(); err != nil {
		return err
	}
	if err := c.validateStation(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDepot() error {
	if c.Depot.URL == "" {
		return errors.New("depot.url must be set")
	}
	parsed, err := url.Parse(c.Depot.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("depot.url %q is not a valid URL", c.Depot.URL)
	}
	if c.Depot.TimeoutSeconds <= 0 {
		return errors.New("depot.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateStation() error {
	if c.Station.DebounceSeconds < 0 {
		return errors.New("station.debounce_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
