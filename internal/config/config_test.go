package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"relicnotify/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NEW_RELIC_US_ENDPOINT", "")
	t.Setenv("NEW_RELIC_EU_ENDPOINT", "")
	t.Setenv("RELICNOTIFY_CREDENTIALS_FILE", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

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

	wantCreds := filepath.Join(home, ".config", "relicnotify", "credentials.toml")
	if cfg.Paths.CredentialsFile != wantCreds {
		t.Fatalf("unexpected credentials file: got %q want %q", cfg.Paths.CredentialsFile, wantCreds)
	}
	if cfg.NewRelic.USEndpoint != "https://api.newrelic.com" {
		t.Fatalf("unexpected us endpoint: %q", cfg.NewRelic.USEndpoint)
	}
	if cfg.NewRelic.EUEndpoint != "https://api.eu.newrelic.com" {
		t.Fatalf("unexpected eu endpoint: %q", cfg.NewRelic.EUEndpoint)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected request timeout: %s", cfg.RequestTimeout())
	}
	if cfg.Logging.Format != "auto" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Metrics.Enabled {
		t.Fatal("expected metrics disabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{filepath.Dir(cfg.Paths.CredentialsFile), filepath.Dir(cfg.Paths.HistoryDB)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "relicnotify.toml")

	type payload struct {
		NewRelic struct {
			EUEndpoint     string `toml:"eu_endpoint"`
			RequestTimeout int    `toml:"request_timeout"`
		} `toml:"newrelic"`
		Paths struct {
			CredentialsFile string `toml:"credentials_file"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.NewRelic.EUEndpoint = "https://proxy.example.com/eu/"
	custom.NewRelic.RequestTimeout = 5
	custom.Paths.CredentialsFile = filepath.Join(tempDir, "creds.toml")
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.NewRelic.EUEndpoint != "https://proxy.example.com/eu" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.NewRelic.EUEndpoint)
	}
	if cfg.NewRelic.USEndpoint != "https://api.newrelic.com" {
		t.Fatalf("expected default us endpoint, got %q", cfg.NewRelic.USEndpoint)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.RequestTimeout())
	}
	if cfg.Paths.CredentialsFile != custom.Paths.CredentialsFile {
		t.Fatalf("unexpected credentials file: %q", cfg.Paths.CredentialsFile)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadHonoursEnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	credPath := filepath.Join(t.TempDir(), "env-creds.toml")
	t.Setenv("NEW_RELIC_US_ENDPOINT", "http://127.0.0.1:9999")
	t.Setenv("RELICNOTIFY_CREDENTIALS_FILE", credPath)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NewRelic.USEndpoint != "http://127.0.0.1:9999" {
		t.Fatalf("expected env endpoint, got %q", cfg.NewRelic.USEndpoint)
	}
	if cfg.Paths.CredentialsFile != credPath {
		t.Fatalf("expected env credentials file, got %q", cfg.Paths.CredentialsFile)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"relative endpoint", "[newrelic]\nus_endpoint = \"api.newrelic.com\"\n", "newrelic.us_endpoint"},
		{"zero timeout", "[newrelic]\nrequest_timeout = 0\n", "newrelic.request_timeout"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"unknown field", "[newrelic]\nregion = \"eu\"\n", "parse config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolateEnv(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in error, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.NewRelic.EUEndpoint != config.Default().NewRelic.EUEndpoint {
		t.Fatalf("unexpected sample endpoint: %q", cfg.NewRelic.EUEndpoint)
	}
}
