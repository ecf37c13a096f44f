package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNewRelic(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNewRelic() error {
	if !validEndpoint(c.NewRelic.USEndpoint) {
		return fmt.Errorf("newrelic.us_endpoint must be an absolute http(s) URL, got %q", c.NewRelic.USEndpoint)
	}
	if !validEndpoint(c.NewRelic.EUEndpoint) {
		return fmt.Errorf("newrelic.eu_endpoint must be an absolute http(s) URL, got %q", c.NewRelic.EUEndpoint)
	}
	if c.NewRelic.RequestTimeout <= 0 {
		return errors.New("newrelic.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
