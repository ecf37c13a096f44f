// Package config loads, normalizes, and validates relicnotify configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NEW_RELIC_EU_ENDPOINT and RELICNOTIFY_CREDENTIALS_FILE. Regional API hosts
// live here so tests and proxies can redirect both protocol versions without
// touching the client.
package config
