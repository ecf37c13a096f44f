package testsupport

import (
	"path/filepath"
	"testing"

	"relicnotify/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose files live in a per-test temp directory.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CredentialsFile = filepath.Join(base, "config", "credentials.toml")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "data", "history.db")
	cfgVal.Paths.MetricsTextfile = filepath.Join(base, "data", "relicnotify.prom")
	cfgVal.Logging.Format = "json"
	cfgVal.NewRelic.RequestTimeout = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEndpoint points both regional hosts at baseURL, with /us and /eu
// suffixes so tests can tell them apart.
func WithEndpoint(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.NewRelic.USEndpoint = baseURL + "/us"
		b.cfg.NewRelic.EUEndpoint = baseURL + "/eu"
	}
}

// WithoutHistory disables the history store.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithMetrics enables metrics textfile output.
func WithMetrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Enabled = true
	}
}
