package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeNewRelic()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNewRelic() {
	if value, ok := os.LookupEnv("NEW_RELIC_US_ENDPOINT"); ok && strings.TrimSpace(value) != "" {
		c.NewRelic.USEndpoint = value
	}
	if value, ok := os.LookupEnv("NEW_RELIC_EU_ENDPOINT"); ok && strings.TrimSpace(value) != "" {
		c.NewRelic.EUEndpoint = value
	}
	c.NewRelic.USEndpoint = strings.TrimRight(strings.TrimSpace(c.NewRelic.USEndpoint), "/")
	if c.NewRelic.USEndpoint == "" {
		c.NewRelic.USEndpoint = defaultUSEndpoint
	}
	c.NewRelic.EUEndpoint = strings.TrimRight(strings.TrimSpace(c.NewRelic.EUEndpoint), "/")
	if c.NewRelic.EUEndpoint == "" {
		c.NewRelic.EUEndpoint = defaultEUEndpoint
	}
	c.NewRelic.UserAgent = strings.TrimSpace(c.NewRelic.UserAgent)
	if c.NewRelic.UserAgent == "" {
		c.NewRelic.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("RELICNOTIFY_CREDENTIALS_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CredentialsFile = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.CredentialsFile) == "" {
		c.Paths.CredentialsFile = defaultCredentialsFile
	}
	if c.Paths.CredentialsFile, err = expandPath(c.Paths.CredentialsFile); err != nil {
		return fmt.Errorf("paths.credentials_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.MetricsTextfile) == "" {
		c.Paths.MetricsTextfile = defaultMetricsTextfile
	}
	if c.Paths.MetricsTextfile, err = expandPath(c.Paths.MetricsTextfile); err != nil {
		return fmt.Errorf("paths.metrics_textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = "auto"
	case "console", "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
