// Package history persists dispatch runs and per-target attempts in SQLite so
// operators can audit which deployment markers were sent, and why some were
// not. The Recorder type plugs the store into a dispatch engine as an
// observer.
package history
