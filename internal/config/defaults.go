package config

const (
	defaultConfigPath       = "~/.config/relicnotify/config.toml"
	defaultCredentialsFile  = "~/.config/relicnotify/credentials.toml"
	defaultHistoryDB        = "~/.local/share/relicnotify/history.db"
	defaultMetricsTextfile  = "~/.local/share/relicnotify/relicnotify.prom"
	defaultUSEndpoint       = "https://api.newrelic.com"
	defaultEUEndpoint       = "https://api.eu.newrelic.com"
	defaultRequestTimeout   = 30
	defaultUserAgent        = "relicnotify/0.1.0"
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"
	defaultHistoryRetention = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		NewRelic: NewRelic{
			USEndpoint:     defaultUSEndpoint,
			EUEndpoint:     defaultEUEndpoint,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Paths: Paths{
			CredentialsFile: defaultCredentialsFile,
			HistoryDB:       defaultHistoryDB,
			MetricsTextfile: defaultMetricsTextfile,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
